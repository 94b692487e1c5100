package oracle

import (
	"fmt"
	"strings"

	"github.com/mystictarot/mystic/internal/session"
	"github.com/mystictarot/mystic/internal/spread"
)

// BuildPrompt renders the interpretation prompt: reader persona, the spread
// name and description, and each position with its drawn card and
// orientation, followed by the three-part reading instruction.
func BuildPrompt(sp spread.Config, cards []session.DrawnCard) string {
	var b strings.Builder

	b.WriteString("You are a professional, mystical Tarot Reader with deep knowledge of the Rider-Waite system.\n")
	fmt.Fprintf(&b, "Please interpret the following %s spread for the user.\n", sp.Name)
	b.WriteString("Use a mysterious yet comforting tone. Keep the language Chinese (Simplified).\n\n")

	fmt.Fprintf(&b, "Spread Type: %s - %s\n\n", sp.Name, sp.Description)

	b.WriteString("Cards Drawn:\n")
	for i, dc := range cards {
		pos := sp.Positions[i]
		status := "正位 (Upright)"
		if dc.Reversed {
			status = "逆位 (Reversed)"
		}
		fmt.Fprintf(&b, "%d. Position: %s (%s)\n", i+1, pos.Name, pos.Description)
		fmt.Fprintf(&b, "   Card: %s (%s) - %s\n", dc.Card.LocalName, dc.Card.Name, status)
	}

	b.WriteString("\nPlease provide a comprehensive reading.\n")
	b.WriteString("1. briefly explain each card in its position.\n")
	b.WriteString("2. provide a synthesis/summary of the overall energy.\n")
	b.WriteString("3. give actionable advice.\n")
	b.WriteString("Format the output using clear Markdown headers and bullet points.")

	return b.String()
}
