// Package protocol derives the per-session decoding parameters of a demo
// file from the two version numbers in its header. A [Profile] is resolved
// once per decode and then passed, read-only, to every grammar whose layout
// depends on the protocol revision.
//
// The table of supported revisions and the protocol-dependent field widths
// live in an embedded YAML document; widths are expressions over
// network_protocol and demo_protocol evaluated at resolve time.
package protocol

import (
	_ "embed"
	"fmt"
	"slices"

	"github.com/casbin/govaluate"
	"gopkg.in/yaml.v3"
)

// Game identifies the game build family that recorded a demo.
type Game int

const (
	Portal3420 Game = iota + 1
	Portal5135
	PortalSteampipe
)

var gameNames = map[string]Game{
	"portal-3420":      Portal3420,
	"portal-5135":      Portal5135,
	"portal-steampipe": PortalSteampipe,
}

func (g Game) String() string {
	for name, v := range gameNames {
		if v == g {
			return name
		}
	}
	return fmt.Sprintf("game(%d)", int(g))
}

// Profile holds the protocol-derived parameters for one decode session.
// Length widths of 0 select a varint-encoded length.
type Profile struct {
	DemoProtocol    int32
	NetworkProtocol int32
	Game            Game

	MessageTagBits           int
	StringTableLengthBits    int
	StringTableHasFlags      bool
	StringTableFlagBits      int
	PacketEntitiesLengthBits int
	TempEntitiesLengthBits   int
	PrefetchSoundIndexBits   int
}

//go:embed profiles.yaml
var profilesYAML []byte

type profileTable struct {
	DemoProtocols []int32 `yaml:"demo_protocols"`
	Games         []struct {
		NetworkProtocol int32  `yaml:"network_protocol"`
		Game            string `yaml:"game"`
	} `yaml:"games"`
	Layout struct {
		MessageTagBits           string `yaml:"message_tag_bits"`
		StringTableLengthBits    string `yaml:"string_table_length_bits"`
		StringTableHasFlags      string `yaml:"string_table_has_flags"`
		StringTableFlagBits      string `yaml:"string_table_flag_bits"`
		PacketEntitiesLengthBits string `yaml:"packet_entities_length_bits"`
		TempEntitiesLengthBits   string `yaml:"temp_entities_length_bits"`
		PrefetchSoundIndexBits   string `yaml:"prefetch_sound_index_bits"`
	} `yaml:"layout"`
}

type layoutField struct {
	name string
	expr *govaluate.EvaluableExpression
	set  func(p *Profile, v any) error
}

type compiledTable struct {
	demoProtocols []int32
	games         map[int32]Game
	layout        []layoutField
}

var table = mustLoadTable(profilesYAML)

func mustLoadTable(data []byte) *compiledTable {
	t, err := loadTable(data)
	if err != nil {
		panic(err)
	}
	return t
}

func loadTable(data []byte) (*compiledTable, error) {
	var raw profileTable
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("protocol: parse profile table: %w", err)
	}

	t := &compiledTable{
		demoProtocols: raw.DemoProtocols,
		games:         make(map[int32]Game, len(raw.Games)),
	}
	for _, g := range raw.Games {
		game, ok := gameNames[g.Game]
		if !ok {
			return nil, fmt.Errorf("protocol: unknown game %q for network protocol %d", g.Game, g.NetworkProtocol)
		}
		t.games[g.NetworkProtocol] = game
	}

	l := raw.Layout
	fields := []struct {
		name string
		expr string
		set  func(p *Profile, v any) error
	}{
		{"message_tag_bits", l.MessageTagBits, intSetter(func(p *Profile, n int) { p.MessageTagBits = n })},
		{"string_table_length_bits", l.StringTableLengthBits, intSetter(func(p *Profile, n int) { p.StringTableLengthBits = n })},
		{"string_table_has_flags", l.StringTableHasFlags, boolSetter(func(p *Profile, b bool) { p.StringTableHasFlags = b })},
		{"string_table_flag_bits", l.StringTableFlagBits, intSetter(func(p *Profile, n int) { p.StringTableFlagBits = n })},
		{"packet_entities_length_bits", l.PacketEntitiesLengthBits, intSetter(func(p *Profile, n int) { p.PacketEntitiesLengthBits = n })},
		{"temp_entities_length_bits", l.TempEntitiesLengthBits, intSetter(func(p *Profile, n int) { p.TempEntitiesLengthBits = n })},
		{"prefetch_sound_index_bits", l.PrefetchSoundIndexBits, intSetter(func(p *Profile, n int) { p.PrefetchSoundIndexBits = n })},
	}
	for _, f := range fields {
		if f.expr == "" {
			return nil, fmt.Errorf("protocol: layout parameter %s missing", f.name)
		}
		expr, err := govaluate.NewEvaluableExpression(f.expr)
		if err != nil {
			return nil, fmt.Errorf("protocol: layout parameter %s: %w", f.name, err)
		}
		t.layout = append(t.layout, layoutField{name: f.name, expr: expr, set: f.set})
	}
	return t, nil
}

func intSetter(set func(*Profile, int)) func(*Profile, any) error {
	return func(p *Profile, v any) error {
		f, ok := v.(float64)
		if !ok || f < 0 || f > 64 || f != float64(int(f)) {
			return fmt.Errorf("not a bit width: %v", v)
		}
		set(p, int(f))
		return nil
	}
}

func boolSetter(set func(*Profile, bool)) func(*Profile, any) error {
	return func(p *Profile, v any) error {
		b, ok := v.(bool)
		if !ok {
			return fmt.Errorf("not a boolean: %v", v)
		}
		set(p, b)
		return nil
	}
}

// Resolve derives the Profile for a demo recorded with the given format and
// network protocol revisions. Unsupported revisions fail with
// ErrUnsupportedFormat.
func Resolve(demoProtocol, networkProtocol int32) (Profile, error) {
	return table.resolve(demoProtocol, networkProtocol)
}

func (t *compiledTable) resolve(demoProtocol, networkProtocol int32) (Profile, error) {
	if !slices.Contains(t.demoProtocols, demoProtocol) {
		return Profile{}, fmt.Errorf("%w: demo protocol %d", ErrUnsupportedFormat, demoProtocol)
	}
	game, ok := t.games[networkProtocol]
	if !ok {
		return Profile{}, fmt.Errorf("%w: network protocol %d", ErrUnsupportedFormat, networkProtocol)
	}

	p := Profile{
		DemoProtocol:    demoProtocol,
		NetworkProtocol: networkProtocol,
		Game:            game,
	}
	params := map[string]any{
		"network_protocol": float64(networkProtocol),
		"demo_protocol":    float64(demoProtocol),
	}
	for _, f := range t.layout {
		v, err := f.expr.Evaluate(params)
		if err != nil {
			return Profile{}, fmt.Errorf("protocol: evaluate %s: %w", f.name, err)
		}
		if err := f.set(&p, v); err != nil {
			return Profile{}, fmt.Errorf("protocol: %s: %w", f.name, err)
		}
	}
	return p, nil
}

// IsSteampipe reports whether the profile describes the Steampipe build,
// whose server info layout differs from the older builds.
func (p Profile) IsSteampipe() bool { return p.Game == PortalSteampipe }
