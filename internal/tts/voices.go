package tts

import (
	"fmt"
	"os"

	"github.com/pelletier/go-toml/v2"
)

// DefaultVoice is used for languages without an entry in the preference
// table.
const DefaultVoice = "en-US-GuyNeural"

// defaultVoicePreferences orders Edge voices per language code. Voices are
// tried in order; a later voice is only reached when an earlier one returns
// no audio. Lingala has no Edge voice, so it borrows a French one.
var defaultVoicePreferences = map[string][]string{
	"nl": {
		"nl-NL-MaartenNeural",
		"nl-NL-ColetteNeural",
		"nl-BE-ArnaudNeural",
	},
	"en": {
		DefaultVoice,
		"en-US-JennyNeural",
		"en-GB-RyanNeural",
		"en-AU-WilliamNeural",
	},
	"es":    {"es-ES-AlvaroNeural"},
	"it":    {"it-IT-GiuseppeNeural"},
	"fr":    {"fr-FR-HenriNeural"},
	"de":    {"de-DE-ConradNeural"},
	"sv":    {"sv-SE-MattiasNeural"},
	"pt-br": {"pt-BR-AntonioNeural"},
	"pt-pt": {"pt-PT-DuarteNeural"},
	"fi":    {"fi-FI-HarriNeural"},
	"ln":    {"fr-FR-DeniseNeural"},
}

// VoiceTable resolves the ordered voice preferences for a language.
type VoiceTable struct {
	preferences map[string][]string
}

// NewVoiceTable returns the built-in preference table.
func NewVoiceTable() *VoiceTable {
	prefs := make(map[string][]string, len(defaultVoicePreferences))
	for code, voices := range defaultVoicePreferences {
		prefs[code] = append([]string(nil), voices...)
	}
	return &VoiceTable{preferences: prefs}
}

// LoadVoiceTable reads per-language voice overrides from a TOML file and
// merges them over the built-in table. The file maps language codes to
// ordered voice lists:
//
//	[voices]
//	nl = ["nl-NL-FennaNeural"]
//	fr = ["fr-FR-DeniseNeural", "fr-FR-HenriNeural"]
func LoadVoiceTable(path string) (*VoiceTable, error) {
	table := NewVoiceTable()

	file, err := os.Open(path) // #nosec G304 -- path comes from operator config
	if err != nil {
		return nil, fmt.Errorf("open voice overrides: %w", err)
	}
	defer file.Close()

	var overrides struct {
		Voices map[string][]string `toml:"voices"`
	}
	if err := toml.NewDecoder(file).Decode(&overrides); err != nil {
		return nil, fmt.Errorf("parse voice overrides %s: %w", path, err)
	}

	for code, voices := range overrides.Voices {
		if len(voices) == 0 {
			continue
		}
		table.preferences[code] = append([]string(nil), voices...)
	}
	return table, nil
}

// VoicesFor returns the ordered voices to try for a language code. Unknown
// languages fall back to the default voice.
func (t *VoiceTable) VoicesFor(code string) []string {
	if voices, ok := t.preferences[code]; ok {
		return voices
	}
	return []string{DefaultVoice}
}
