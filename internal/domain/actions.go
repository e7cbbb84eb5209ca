package domain

import "fmt"

// ControlAction is a control-surface command for a room. The wire names match
// what the control panel and game view send; dispatch is over this typed enum
// so the compiler enforces exhaustive handling as actions are added.
type ControlAction string

const (
	ActionInitGame        ControlAction = "initGame"
	ActionRunGame         ControlAction = "runGame"
	ActionResetGame       ControlAction = "resetGame"
	ActionShowTopWinners  ControlAction = "showTopWinners"
	ActionShowResultList  ControlAction = "showResultList"
	ActionPingController  ControlAction = "pingController"
	ActionPingGameView    ControlAction = "pingGameView"
	ActionAddedCharacter  ControlAction = "addedCharacter"
	ActionChangeGameStage ControlAction = "changeGameStage"
	ActionReportResult    ControlAction = "reportResult"
	ActionGetAction       ControlAction = "gameViewGetAction"
	ActionNotEnoughMoney  ControlAction = "notEnoughMoney"
)

var knownActions = map[ControlAction]struct{}{
	ActionInitGame:        {},
	ActionRunGame:         {},
	ActionResetGame:       {},
	ActionShowTopWinners:  {},
	ActionShowResultList:  {},
	ActionPingController:  {},
	ActionPingGameView:    {},
	ActionAddedCharacter:  {},
	ActionChangeGameStage: {},
	ActionReportResult:    {},
	ActionGetAction:       {},
	ActionNotEnoughMoney:  {},
}

// ParseControlAction validates a wire action name.
func ParseControlAction(s string) (ControlAction, error) {
	a := ControlAction(s)
	if _, ok := knownActions[a]; !ok {
		return "", fmt.Errorf("unknown control action %q", s)
	}
	return a, nil
}
