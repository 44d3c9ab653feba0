package data

// Student ID card presentation constants.
const (
	CardSubtitle = "INTERNATIONAL STUDENT ID CARD"
	CardNotice   = "This card is the property of the university and must be returned upon request. " +
		"If found, please return to the nearest university office."
)

// CardColors is the palette a card header color is drawn from.
var CardColors = []string{
	"#3b82f6", // blue
	"#10b981", // emerald
	"#8b5cf6", // violet
	"#ef4444", // red
	"#f59e0b", // amber
	"#06b6d4", // cyan
	"#ec4899", // pink
}
