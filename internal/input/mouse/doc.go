// Package mouse provides pointer input translation for borderedit.
//
// Terminals report the mouse as a position plus the set of buttons held at
// that moment. The editor needs discrete press, release and move events, so
// the Translator compares each report against the previous one and emits the
// edges:
//
//	tr := mouse.NewTranslator(mouse.DefaultConfig())
//	for _, ev := range tr.Translate(pos, held, time.Now()) {
//	    deliver(ev)
//	}
//
// # Ordering
//
// For a single report the Translator emits, in order:
//
//  1. a move (or drag, while a button was already held) if the position changed
//  2. a release for every button that is no longer held
//  3. a press for every button that became held
//
// so the receiver always sees the pointer arrive before a button changes
// under it.
//
// Buttons outside Config.Buttons are dropped from every report, so a
// translator configured for the left button alone never reports a
// right-button press.
//
// # Thread Safety
//
// Translator is safe for concurrent use. All state mutations are properly
// synchronized with mutex protection.
package mouse
