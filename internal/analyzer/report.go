package analyzer

import "encoding/json"

// VanillaPorts are the ports announced by the game server itself. Nil means not announced.
type VanillaPorts struct {
	Server *uint16 `json:"server"`
	Query  *uint16 `json:"query"`
	Rcon   *uint16 `json:"rcon"`
}

// Ports groups every port found in a log.
type Ports struct {
	Vanilla VanillaPorts      `json:"vanilla"`
	Plugins map[string]uint16 `json:"plugins"`
	Mods    map[string]uint16 `json:"mods"`
}

// Report is the result of one analysis. It is built once by Analyzer.Build and not modified afterwards.
// The modded, proxy and bukkit flags are derived from Platform and only appear in the JSON form.
type Report struct {
	Platform Platform
	Version  *string
	Plugins  map[string]string
	Ports    Ports
}

func (report *Report) IsModded() bool      { return report.Platform.IsModded() }
func (report *Report) IsProxy() bool       { return report.Platform.IsProxy() }
func (report *Report) IsBukkitBased() bool { return report.Platform.IsBukkitBased() }

type reportJSON struct {
	Plugins       map[string]string `json:"plugins"`
	Platform      Platform          `json:"platform"`
	Version       *string           `json:"version"`
	IsModded      bool              `json:"is_modded"`
	IsProxy       bool              `json:"is_proxy"`
	IsBukkitBased bool              `json:"is_bukkit_based"`
	Ports         Ports             `json:"ports"`
}

func (report Report) MarshalJSON() ([]byte, error) {
	return json.Marshal(reportJSON{
		Plugins:       report.Plugins,
		Platform:      report.Platform,
		Version:       report.Version,
		IsModded:      report.Platform.IsModded(),
		IsProxy:       report.Platform.IsProxy(),
		IsBukkitBased: report.Platform.IsBukkitBased(),
		Ports:         report.Ports,
	})
}

// UnmarshalJSON restores a stored report, flags in the input are ignored.
func (report *Report) UnmarshalJSON(data []byte) error {
	var decoded reportJSON
	if err := json.Unmarshal(data, &decoded); err != nil {
		return err
	}

	*report = Report{
		Platform: decoded.Platform,
		Version:  decoded.Version,
		Plugins:  decoded.Plugins,
		Ports:    decoded.Ports,
	}
	if report.Plugins == nil {
		report.Plugins = map[string]string{}
	}
	if report.Ports.Plugins == nil {
		report.Ports.Plugins = map[string]uint16{}
	}
	if report.Ports.Mods == nil {
		report.Ports.Mods = map[string]uint16{}
	}
	return nil
}
