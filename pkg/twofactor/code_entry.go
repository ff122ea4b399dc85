package twofactor

import "strings"

// CodeLength is the number of digits in a verification code.
const CodeLength = 6

// CodeEntry is the six-slot code input buffer. Each slot holds at most one
// digit; non-digit input is ignored outright rather than accepted and
// validated later. The zero value is empty with focus on the first slot.
//
// CodeEntry is not safe for concurrent use; the owning Flow serializes
// access to it.
type CodeEntry struct {
	slots [CodeLength]byte // 0 means empty, otherwise '0'..'9'
	focus int
}

// Type places a digit into the focused slot and advances focus. Anything
// that is not a decimal digit is dropped without moving focus. Focus never
// moves past the last slot, so typing into a full buffer overwrites the
// sixth digit rather than being dropped.
func (e *CodeEntry) Type(r rune) {
	if r < '0' || r > '9' {
		return
	}
	e.slots[e.focus] = byte(r)
	if e.focus < CodeLength-1 {
		e.focus++
	}
}

// Paste distributes the digits of s across consecutive slots starting at
// the focused one, dropping non-digit characters and anything past the last
// slot. Focus lands on the last slot that received a digit; a paste with no
// digits leaves the buffer untouched.
func (e *CodeEntry) Paste(s string) {
	slot := e.focus
	for _, r := range s {
		if r < '0' || r > '9' {
			continue
		}
		if slot >= CodeLength {
			break
		}
		e.slots[slot] = byte(r)
		e.focus = slot
		slot++
	}
}

// Backspace clears the focused slot if it holds a digit; otherwise it moves
// focus one slot left and clears that one. At the first empty slot it does
// nothing.
func (e *CodeEntry) Backspace() {
	if e.slots[e.focus] != 0 {
		e.slots[e.focus] = 0
		return
	}
	if e.focus > 0 {
		e.focus--
		e.slots[e.focus] = 0
	}
}

// Clear empties every slot and returns focus to the first one.
func (e *CodeEntry) Clear() {
	e.slots = [CodeLength]byte{}
	e.focus = 0
}

// Code returns the entered digits in slot order, skipping empty slots.
func (e *CodeEntry) Code() string {
	var b strings.Builder
	b.Grow(CodeLength)
	for _, d := range e.slots {
		if d != 0 {
			b.WriteByte(d)
		}
	}
	return b.String()
}

// Complete reports whether all six slots hold a digit.
func (e *CodeEntry) Complete() bool {
	for _, d := range e.slots {
		if d == 0 {
			return false
		}
	}
	return true
}

// Focus returns the index of the focused slot.
func (e *CodeEntry) Focus() int { return e.focus }

// Slot returns the digit in slot i and whether it is filled.
func (e *CodeEntry) Slot(i int) (rune, bool) {
	if i < 0 || i >= CodeLength || e.slots[i] == 0 {
		return 0, false
	}
	return rune(e.slots[i]), true
}
