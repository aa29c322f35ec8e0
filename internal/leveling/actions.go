package leveling

import (
	"errors"
	"fmt"
)

// ErrUnknownAction is returned by ParseAction for names outside the action table.
var ErrUnknownAction = errors.New("unknown action")

// Action is an XP-earning activity.
type Action int

// Known actions. ActionCustom carries no table amount and is only useful with
// an explicit amount.
const (
	ActionUnknown Action = iota
	ActionCreatePost
	ActionPostWithImage
	ActionPostWithTags
	ActionComment
	ActionSharePost
	ActionEnrollCourse
	ActionCompleteLesson
	ActionAddReaction
	ActionMessageSent
	ActionUploadPaper
	ActionCreateCourse
	ActionCompleteCourse
	ActionDailyLogin
	ActionReachLevelMilestone
	ActionCustom
)

type actionInfo struct {
	name   string
	amount int
}

var actionTable = map[Action]actionInfo{
	ActionCreatePost:          {"CREATE_POST", 10},
	ActionPostWithImage:       {"POST_WITH_IMAGE", 15},
	ActionPostWithTags:        {"POST_WITH_TAGS", 5},
	ActionComment:             {"COMMENT", 5},
	ActionSharePost:           {"SHARE_POST", 8},
	ActionEnrollCourse:        {"ENROLL_COURSE", 10},
	ActionCompleteLesson:      {"COMPLETE_LESSON", 20},
	ActionAddReaction:         {"ADD_REACTION", 3},
	ActionMessageSent:         {"MESSAGE_SENT", 1},
	ActionUploadPaper:         {"UPLOAD_PAPER", 50},
	ActionCreateCourse:        {"CREATE_COURSE", 100},
	ActionCompleteCourse:      {"COMPLETE_COURSE", 100},
	ActionDailyLogin:          {"DAILY_LOGIN", 5},
	ActionReachLevelMilestone: {"REACH_LEVEL_MILESTONE", 50},
	ActionCustom:              {"CUSTOM", 0},
}

var actionsByName = func() map[string]Action {
	m := make(map[string]Action, len(actionTable))
	for a, info := range actionTable {
		m[info.name] = a
	}
	return m
}()

// ParseAction resolves an action name such as "CREATE_POST".
func ParseAction(name string) (Action, error) {
	a, ok := actionsByName[name]
	if !ok {
		return ActionUnknown, fmt.Errorf("%w: %q", ErrUnknownAction, name)
	}
	return a, nil
}

// Amount returns the table XP for the action, 0 for unknown and custom actions.
func (a Action) Amount() int {
	return actionTable[a].amount
}

func (a Action) String() string {
	if info, ok := actionTable[a]; ok {
		return info.name
	}
	return "UNKNOWN"
}

// MarshalText implements encoding.TextMarshaler.
func (a Action) MarshalText() ([]byte, error) {
	return []byte(a.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (a *Action) UnmarshalText(text []byte) error {
	parsed, err := ParseAction(string(text))
	if err != nil {
		return err
	}
	*a = parsed
	return nil
}

// Actions lists every known action with its table amount, in declaration order.
func Actions() []ActionAmount {
	out := make([]ActionAmount, 0, len(actionTable))
	for a := ActionCreatePost; a <= ActionCustom; a++ {
		out = append(out, ActionAmount{Action: a, XP: a.Amount()})
	}
	return out
}

// ActionAmount pairs an action with its table XP.
type ActionAmount struct {
	Action Action `json:"action"`
	XP     int    `json:"xp"`
}
