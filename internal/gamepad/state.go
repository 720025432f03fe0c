package gamepad

// Edge is a press or release transition of one button between two snapshots.
type Edge struct {
	Button  ButtonID
	Pressed bool
}

// Edges returns the button transitions from old to new_, in enumeration
// order. Buttons that did not change are omitted.
func Edges(old, new_ Snapshot) []Edge {
	changed := old.buttons ^ new_.buttons
	if changed == 0 {
		return nil
	}

	var edges []Edge
	for b := ButtonID(0); b < ButtonCount; b++ {
		if changed&(1<<uint(b)) == 0 {
			continue
		}
		edges = append(edges, Edge{Button: b, Pressed: new_.IsPressed(b)})
	}
	return edges
}
