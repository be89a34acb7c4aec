package protocol

// QuestionKind tags every frame exchanged with a participant.
type QuestionKind string

const (
	KindGreet           QuestionKind = "GREET"
	KindError           QuestionKind = "ERROR"
	KindNickname        QuestionKind = "NICKNAME"
	KindQuit            QuestionKind = "QUIT"
	KindEffectsSequence QuestionKind = "EFFECTS_SEQUENCE"
	KindSpawn           QuestionKind = "SPAWN"
	KindPowerup         QuestionKind = "POWERUP"
	KindDestination     QuestionKind = "DESTINATION"
	KindWeapon          QuestionKind = "WEAPON"
	KindWeaponToBuy     QuestionKind = "WEAPON_TO_BUY"
	KindWeaponToDiscard QuestionKind = "WEAPON_TO_DISCARD"
	KindWeaponToReload  QuestionKind = "WEAPON_TO_RELOAD"
	KindAction          QuestionKind = "ACTION"
	KindPowerupForPay   QuestionKind = "POWERUP_FOR_PAYING"
	KindUseTagback      QuestionKind = "USE_TAGBACK"
	KindTarget          QuestionKind = "TARGET"

	// Meta kinds used by the state broadcast, never asked.
	KindNotification QuestionKind = "NOTIFICATION"
	KindUpdate       QuestionKind = "UPDATE"
)

var allKinds = []QuestionKind{
	KindGreet, KindError, KindNickname, KindQuit, KindEffectsSequence, KindSpawn,
	KindPowerup, KindDestination, KindWeapon, KindWeaponToBuy, KindWeaponToDiscard,
	KindWeaponToReload, KindAction, KindPowerupForPay, KindUseTagback, KindTarget,
	KindNotification, KindUpdate,
}

func (k QuestionKind) Valid() bool {
	for _, v := range allKinds {
		if v == k {
			return true
		}
	}
	return false
}

// Labels for the trailing option of optional questions.
const (
	DeclineLabel = "none"
	StopLabel    = "stop"
)

type Question struct {
	Type    QuestionKind `json:"type"`
	Options [][]string   `json:"options"`
}

type Answer struct {
	Type   QuestionKind `json:"type"`
	Answer int          `json:"answer"`
	Text   string       `json:"text,omitempty"`
}

type Notification struct {
	Type QuestionKind `json:"type"`
}

type Update struct {
	Type    QuestionKind `json:"type"`
	Payload any          `json:"payload"`
}
