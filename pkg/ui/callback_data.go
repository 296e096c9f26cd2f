package ui

import (
	"errors"
	"strconv"
	"strings"

	"github.com/smith3v/tg-reminder-bot/pkg/paginate"
)

const (
	PagerCallbackPrefix = "pg:"
	MaxCallbackDataLen  = 64
)

type PagerOp string

const (
	OpFirst    PagerOp = "f"
	OpPrevious PagerOp = "p"
	OpStop     PagerOp = "s"
	OpNext     PagerOp = "n"
	OpLast     PagerOp = "l"
	OpJump     PagerOp = "j"
	OpNoop     PagerOp = "x"
)

// PagerCallback is decoded pager callback data.
type PagerCallback struct {
	Token  string
	Action paginate.Action
}

var (
	errInvalidPrefix       = errors.New("invalid callback prefix")
	errInvalidAction       = errors.New("invalid callback action")
	errInvalidOperation    = errors.New("invalid callback operation")
	errInvalidValue        = errors.New("invalid callback value")
	errInvalidToken        = errors.New("invalid callback token")
	errCallbackDataTooLong = errors.New("callback data too long")
)

func IsPagerCallback(data string) bool {
	return strings.HasPrefix(data, PagerCallbackPrefix)
}

// BuildPagerCallback encodes action as pg:<token>:<op>[:<index>].
func BuildPagerCallback(token string, action paginate.Action) (string, error) {
	if !isToken(token) {
		return "", errInvalidToken
	}
	op, ok := opFor(action.Kind)
	if !ok {
		return "", errInvalidOperation
	}
	data := PagerCallbackPrefix + token + ":" + string(op)
	if op == OpJump {
		if action.Index < 0 {
			return "", errInvalidValue
		}
		data += ":" + strconv.Itoa(action.Index)
	}
	return validateCallbackData(data)
}

func ParsePagerCallback(data string) (PagerCallback, error) {
	if data == "" {
		return PagerCallback{}, errInvalidAction
	}
	if len(data) > MaxCallbackDataLen {
		return PagerCallback{}, errCallbackDataTooLong
	}
	if !IsPagerCallback(data) {
		return PagerCallback{}, errInvalidPrefix
	}

	parts := strings.Split(strings.TrimPrefix(data, PagerCallbackPrefix), ":")
	if len(parts) < 2 || len(parts) > 3 {
		return PagerCallback{}, errInvalidAction
	}
	if !isToken(parts[0]) {
		return PagerCallback{}, errInvalidToken
	}

	kind, ok := kindFor(PagerOp(parts[1]))
	if !ok {
		return PagerCallback{}, errInvalidOperation
	}
	action := paginate.Action{Kind: kind}

	switch {
	case kind == paginate.ActionJump && len(parts) == 3:
		if !isASCIIUnsignedInt(parts[2]) {
			return PagerCallback{}, errInvalidValue
		}
		index, err := strconv.Atoi(parts[2])
		if err != nil {
			return PagerCallback{}, errInvalidValue
		}
		action.Index = index
	case kind == paginate.ActionJump || len(parts) == 3:
		return PagerCallback{}, errInvalidAction
	}

	return PagerCallback{Token: parts[0], Action: action}, nil
}

func opFor(kind paginate.ActionKind) (PagerOp, bool) {
	switch kind {
	case paginate.ActionFirst:
		return OpFirst, true
	case paginate.ActionPrevious:
		return OpPrevious, true
	case paginate.ActionStop:
		return OpStop, true
	case paginate.ActionNext:
		return OpNext, true
	case paginate.ActionLast:
		return OpLast, true
	case paginate.ActionJump:
		return OpJump, true
	case paginate.ActionNoop:
		return OpNoop, true
	default:
		return "", false
	}
}

func kindFor(op PagerOp) (paginate.ActionKind, bool) {
	switch op {
	case OpFirst:
		return paginate.ActionFirst, true
	case OpPrevious:
		return paginate.ActionPrevious, true
	case OpStop:
		return paginate.ActionStop, true
	case OpNext:
		return paginate.ActionNext, true
	case OpLast:
		return paginate.ActionLast, true
	case OpJump:
		return paginate.ActionJump, true
	case OpNoop:
		return paginate.ActionNoop, true
	default:
		return 0, false
	}
}

func validateCallbackData(data string) (string, error) {
	if data == "" {
		return "", errInvalidAction
	}
	if len(data) > MaxCallbackDataLen {
		return "", errCallbackDataTooLong
	}
	return data, nil
}

func isToken(value string) bool {
	if value == "" || len(value) > 40 {
		return false
	}
	for i := 0; i < len(value); i++ {
		c := value[i]
		if (c < '0' || c > '9') && (c < 'a' || c > 'z') && (c < 'A' || c > 'Z') {
			return false
		}
	}
	return true
}

func isASCIIUnsignedInt(value string) bool {
	if value == "" {
		return false
	}
	for i := 0; i < len(value); i++ {
		if value[i] < '0' || value[i] > '9' {
			return false
		}
	}
	return true
}
