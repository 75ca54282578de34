package calendar

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Holiday names as they appear in the holiday table.
const (
	NameNewYear        = "元旦"
	NameSpringFestival = "春节"
	NameQingming       = "清明节"
	NameLabor          = "劳动节"
	NameDuanwu         = "端午节"
	NameZhongqiu       = "中秋节"
	NameNationalDay    = "国庆节"
)

// =============================================================================
// LUNAR SOURCES
// =============================================================================

// LunarSource supplies holidays whose Gregorian date moves from year to
// year, keyed by YYYY-MM-DD.
type LunarSource interface {
	LunarHolidays() map[string]string
}

// NoLunarSource is the empty source; the resolver then returns fixed
// holidays only.
type NoLunarSource struct{}

func (NoLunarSource) LunarHolidays() map[string]string { return nil }

// MapLunarSource is a static date -> name table.
type MapLunarSource map[string]string

func (m MapLunarSource) LunarHolidays() map[string]string { return m }

// MergedLunarSource layers several sources; later sources win on the same
// date.
type MergedLunarSource []LunarSource

func (ms MergedLunarSource) LunarHolidays() map[string]string {
	out := make(map[string]string)
	for _, s := range ms {
		if s == nil {
			continue
		}
		for d, name := range s.LunarHolidays() {
			out[d] = name
		}
	}
	return out
}

// LunarHorizonYear is the last year covered by BuiltinLunarTable.
const LunarHorizonYear = 2030

// BuiltinLunarTable covers 2024 through LunarHorizonYear. 清明节 is a solar
// term rather than a lunar date but moves between April 4 and 5, so it
// lives here too.
var BuiltinLunarTable = MapLunarSource{
	"2024-02-10": NameSpringFestival,
	"2024-04-04": NameQingming,
	"2024-06-10": NameDuanwu,
	"2024-09-17": NameZhongqiu,

	"2025-01-29": NameSpringFestival,
	"2025-04-04": NameQingming,
	"2025-05-31": NameDuanwu,
	"2025-10-06": NameZhongqiu,

	"2026-02-17": NameSpringFestival,
	"2026-04-05": NameQingming,
	"2026-06-19": NameDuanwu,
	"2026-09-25": NameZhongqiu,

	"2027-02-06": NameSpringFestival,
	"2027-04-05": NameQingming,
	"2027-06-09": NameDuanwu,
	"2027-09-15": NameZhongqiu,

	"2028-01-26": NameSpringFestival,
	"2028-04-04": NameQingming,
	"2028-05-28": NameDuanwu,
	"2028-10-03": NameZhongqiu,

	"2029-02-13": NameSpringFestival,
	"2029-04-04": NameQingming,
	"2029-06-16": NameDuanwu,
	"2029-09-22": NameZhongqiu,

	"2030-02-03": NameSpringFestival,
	"2030-04-05": NameQingming,
	"2030-06-05": NameDuanwu,
	"2030-09-12": NameZhongqiu,
}

// LoadLunarFile reads a date -> name table from a YAML (or JSON) file:
//
//	"2031-01-23": 春节
//	"2031-04-05": 清明节
func LoadLunarFile(path string) (MapLunarSource, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading lunar table: %w", err)
	}
	var table map[string]string
	if err := yaml.Unmarshal(data, &table); err != nil {
		return nil, fmt.Errorf("parsing lunar table: %w", err)
	}
	for d, name := range table {
		if !IsValidDate(d) {
			return nil, fmt.Errorf("lunar table entry %q (%s): not a date", d, name)
		}
	}
	return MapLunarSource(table), nil
}
