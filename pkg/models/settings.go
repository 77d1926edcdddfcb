package models

// Settings holds the user-facing configuration of the highlighter and reviewer
type Settings struct {
	ShortcutModifier string `json:"shortcutModifier" yaml:"shortcutModifier"` // alt, ctrl, shift or meta
	ShortcutKey      string `json:"shortcutKey" yaml:"shortcutKey"`           // single character
	HighlightColor   string `json:"highlightColor" yaml:"highlightColor"`
	ReviewBatchSize  int    `json:"reviewBatchSize" yaml:"reviewBatchSize"` // 1..20
	SheetURL         string `json:"sheetUrl" yaml:"sheetUrl"`
	SheetName        string `json:"sheetName" yaml:"sheetName"`
}
