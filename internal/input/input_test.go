package input

import (
	"testing"
)

// Note: These tests are for documentation purposes.
// Interactive input functions require manual testing in a real terminal.

func TestPrompt_Documentation(t *testing.T) {
	t.Skip("Manual testing required - prompts read from a real terminal")

	// Example usage for documentation:
	// result := Prompt("Project name", "myapp")
	// fmt.Printf("You entered: %s\n", result)
}

func TestConfirm_Documentation(t *testing.T) {
	t.Skip("Manual testing required - prompts read from a real terminal")

	// Example usage for documentation:
	// if Confirm("Include documentation?", true) {
	//     fmt.Println("User confirmed")
	// }
}

func TestSelect_EmptyOptions(t *testing.T) {
	// The only non-interactive path: no options falls back to the default.
	got := Select("License", nil, "mit")
	if got != "mit" {
		t.Errorf("Select with no options should return default, got %q", got)
	}
}
