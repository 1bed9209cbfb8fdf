package ui

import (
	"errors"
	"strconv"
	"strings"
)

const (
	CallbackPrefix     = "rem:"
	MaxCallbackDataLen = 64
)

type ActionKind string

const (
	ActionDone       ActionKind = "done"
	ActionSkip       ActionKind = "skip"
	ActionSeen       ActionKind = "seen"
	ActionSnoozeMenu ActionKind = "snooze_menu"
	ActionSnooze     ActionKind = "snooze"
	ActionSnoozeBack ActionKind = "snooze_back"
)

// Action is a decoded reminder callback. Minutes is set only for
// ActionSnooze.
type Action struct {
	Kind    ActionKind
	EventID uint
	Minutes int
}

var (
	errInvalidPrefix       = errors.New("invalid callback prefix")
	errInvalidAction       = errors.New("invalid callback action")
	errInvalidValue        = errors.New("invalid callback value")
	errCallbackDataTooLong = errors.New("callback data too long")
)

func BuildDoneCallback(eventID uint) (string, error) {
	return buildEventCallback(ActionDone, eventID)
}

func BuildSkipCallback(eventID uint) (string, error) {
	return buildEventCallback(ActionSkip, eventID)
}

func BuildSeenCallback(eventID uint) (string, error) {
	return buildEventCallback(ActionSeen, eventID)
}

func BuildSnoozeMenuCallback(eventID uint) (string, error) {
	return buildEventCallback(ActionSnoozeMenu, eventID)
}

func BuildSnoozeBackCallback(eventID uint) (string, error) {
	return buildEventCallback(ActionSnoozeBack, eventID)
}

func BuildSnoozeCallback(minutes int, eventID uint) (string, error) {
	if minutes <= 0 {
		return "", errInvalidValue
	}
	data := CallbackPrefix + string(ActionSnooze) + ":" + strconv.Itoa(minutes) + ":" + strconv.FormatUint(uint64(eventID), 10)
	return checkLength(data)
}

func buildEventCallback(kind ActionKind, eventID uint) (string, error) {
	data := CallbackPrefix + string(kind) + ":" + strconv.FormatUint(uint64(eventID), 10)
	return checkLength(data)
}

func checkLength(data string) (string, error) {
	if len(data) > MaxCallbackDataLen {
		return "", errCallbackDataTooLong
	}
	return data, nil
}

// ParseCallback decodes reminder callback data built by this package.
func ParseCallback(data string) (Action, error) {
	if len(data) > MaxCallbackDataLen {
		return Action{}, errCallbackDataTooLong
	}
	rest, ok := strings.CutPrefix(data, CallbackPrefix)
	if !ok {
		return Action{}, errInvalidPrefix
	}

	parts := strings.Split(rest, ":")
	kind := ActionKind(parts[0])
	switch kind {
	case ActionDone, ActionSkip, ActionSeen, ActionSnoozeMenu, ActionSnoozeBack:
		if len(parts) != 2 {
			return Action{}, errInvalidAction
		}
		eventID, err := parseEventID(parts[1])
		if err != nil {
			return Action{}, err
		}
		return Action{Kind: kind, EventID: eventID}, nil
	case ActionSnooze:
		if len(parts) != 3 {
			return Action{}, errInvalidAction
		}
		minutes, err := strconv.Atoi(parts[1])
		if err != nil || minutes <= 0 {
			return Action{}, errInvalidValue
		}
		eventID, err := parseEventID(parts[2])
		if err != nil {
			return Action{}, err
		}
		return Action{Kind: kind, EventID: eventID, Minutes: minutes}, nil
	default:
		return Action{}, errInvalidAction
	}
}

func parseEventID(value string) (uint, error) {
	id, err := strconv.ParseUint(value, 10, 32)
	if err != nil || id == 0 {
		return 0, errInvalidValue
	}
	return uint(id), nil
}
