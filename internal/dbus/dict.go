package dbus

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/godbus/dbus/v5"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/tasknest/tasknest/internal/model"
)

// Task dict keys. These are the wire contract: callers on the bus see
// exactly these keys, always present, never holding a nil value.
const (
	KeyID        = "id"
	KeyStatus    = "status"
	KeyTitle     = "title"
	KeyDueDate   = "duedate"
	KeyStartDate = "startdate"
	KeyDoneDate  = "donedate"
	KeyTags      = "tags"
	KeyText      = "text"
	KeySubtask   = "subtask"
)

// TaskToDict converts a task to its D-Bus dictionary form. Every key is
// present: unset dates become empty strings and missing lists become
// empty string arrays, so clients never have to handle absent or nil
// values.
func TaskToDict(t *model.Task) map[string]dbus.Variant {
	tags := t.Tags
	if tags == nil {
		tags = []string{}
	}
	subtasks := t.Subtasks
	if subtasks == nil {
		subtasks = []string{}
	}

	return map[string]dbus.Variant{
		KeyID:        dbus.MakeVariant(t.ID),
		KeyStatus:    dbus.MakeVariant(t.Status),
		KeyTitle:     dbus.MakeVariant(t.Title),
		KeyDueDate:   dbus.MakeVariant(t.DueDate.String()),
		KeyStartDate: dbus.MakeVariant(t.StartDate.String()),
		KeyDoneDate:  dbus.MakeVariant(t.ClosedDate.String()),
		KeyTags:      dbus.MakeVariant(tags),
		KeyText:      dbus.MakeVariant(t.Text),
		KeySubtask:   dbus.MakeVariant(subtasks),
	}
}

// TaskFromDict reconstructs a task from its D-Bus dictionary form.
// Used on the client side to get typed tasks back out of a{sv} replies.
func TaskFromDict(dict map[string]dbus.Variant) (model.Task, error) {
	var t model.Task
	t.ID, _ = dictString(dict, KeyID)
	t.Status, _ = dictString(dict, KeyStatus)
	t.Title, _ = dictString(dict, KeyTitle)
	t.Text, _ = dictString(dict, KeyText)

	if tags, ok := dictStrings(dict, KeyTags); ok {
		t.Tags = tags
	}
	if subtasks, ok := dictStrings(dict, KeySubtask); ok {
		t.Subtasks = subtasks
	}

	for _, f := range []struct {
		key string
		dst *model.Date
	}{
		{KeyDueDate, &t.DueDate},
		{KeyStartDate, &t.StartDate},
		{KeyDoneDate, &t.ClosedDate},
	} {
		s, _ := dictString(dict, f.key)
		d, err := model.ParseDate(s)
		if err != nil {
			return model.Task{}, fmt.Errorf("field %s: %w", f.key, err)
		}
		*f.dst = d
	}

	return t, nil
}

// ApplyDict applies the given dictionary fields to a task, used by
// modify_task. Unknown keys are ignored. The returned slice holds
// subtask ids named in the dict; the caller is responsible for wiring
// those parent/child relations through the store.
func ApplyDict(t *model.Task, fields map[string]dbus.Variant) ([]string, error) {
	if status, ok := dictString(fields, KeyStatus); ok {
		done, _ := dictString(fields, KeyDoneDate)
		doneDate, err := model.ParseDate(done)
		if err != nil {
			return nil, fmt.Errorf("field %s: %w", KeyDoneDate, err)
		}
		if err := t.SetStatus(NormalizeStatus(status), doneDate); err != nil {
			return nil, err
		}
	}

	if title, ok := dictString(fields, KeyTitle); ok {
		t.Title = title
	}
	if due, ok := dictString(fields, KeyDueDate); ok {
		d, err := model.ParseDate(due)
		if err != nil {
			return nil, fmt.Errorf("field %s: %w", KeyDueDate, err)
		}
		t.DueDate = d
	}
	if start, ok := dictString(fields, KeyStartDate); ok {
		d, err := model.ParseDate(start)
		if err != nil {
			return nil, fmt.Errorf("field %s: %w", KeyStartDate, err)
		}
		t.StartDate = d
	}
	if text, ok := dictString(fields, KeyText); ok {
		t.Text = text
	}
	if tags, ok := dictStrings(fields, KeyTags); ok {
		for _, tag := range tags {
			t.AddTag(tag)
		}
	}
	t.SyncTags()

	subtasks, _ := dictStrings(fields, KeySubtask)
	return subtasks, nil
}

// asciiFold decomposes accented characters and strips the combining
// marks, so status strings typed with accents still match.
var asciiFold = transform.Chain(norm.NFKD, runes.Remove(runes.In(unicode.Mn)))

func foldASCII(s string) string {
	folded, _, err := transform.String(asciiFold, s)
	if err != nil {
		folded = s
	}
	var b strings.Builder
	b.Grow(len(folded))
	for _, r := range folded {
		if r < 128 {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// NormalizeStatus folds a status string to ASCII and canonicalizes its
// case against the known statuses. Unknown values pass through folded.
func NormalizeStatus(s string) string {
	folded := strings.TrimSpace(foldASCII(s))
	for _, known := range model.Statuses {
		if strings.EqualFold(folded, known) {
			return known
		}
	}
	return folded
}

// NormalizeStatuses splits a comma-separated status string and
// normalizes each entry. Empty entries are dropped, so "" yields nil.
func NormalizeStatuses(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if status := NormalizeStatus(part); status != "" {
			out = append(out, status)
		}
	}
	return out
}

func dictString(dict map[string]dbus.Variant, key string) (string, bool) {
	v, ok := dict[key]
	if !ok {
		return "", false
	}
	s, ok := v.Value().(string)
	return s, ok
}

func dictStrings(dict map[string]dbus.Variant, key string) ([]string, bool) {
	v, ok := dict[key]
	if !ok {
		return nil, false
	}
	switch val := v.Value().(type) {
	case []string:
		return val, true
	case []interface{}:
		out := make([]string, 0, len(val))
		for _, item := range val {
			s, ok := item.(string)
			if !ok {
				return nil, false
			}
			out = append(out, s)
		}
		return out, true
	default:
		return nil, false
	}
}
