package extract

import "testing"

func TestBukkitPlugin(t *testing.T) {
	tests := []struct {
		line    string
		name    string
		version string
		ok      bool
	}{
		{"[12:00:01] [Server thread/INFO]: [LuckPerms] Loading LuckPerms v5.4.0", "LuckPerms", "5.4.0", true},
		{"[12:00:01 INFO]: [Essentials] Loading server plugin EssentialsX v2.20.1", "EssentialsX", "2.20.1", true},
		{"[INFO] Loading myplugin v1.2.3", "myplugin", "1.2.3", true},
		{"[12:00:01] [Server thread/INFO]: Loading properties", "", "", false},
		{"[12:00:01] [Server thread/INFO]: Loading libraries, please wait...", "", "", false},
	}

	for _, tt := range tests {
		plugin, ok := BukkitPlugin(tt.line)
		if ok != tt.ok {
			t.Errorf("%q: ok = %v, want %v", tt.line, ok, tt.ok)
			continue
		}
		if plugin.Name != tt.name || plugin.Version != tt.version {
			t.Errorf("%q: got %s %s, want %s %s", tt.line, plugin.Name, plugin.Version, tt.name, tt.version)
		}
	}
}

func TestServerVersion(t *testing.T) {
	if v, ok := ServerVersion("[18:02:10] [Server thread/INFO]: Starting minecraft server version 1.21.4"); !ok || v != "1.21.4" {
		t.Errorf("got %q %v, want 1.21.4", v, ok)
	}
	if v, ok := ServerVersion("[18:02:10] [Server thread/INFO]: Starting Minecraft server on *:25565"); ok {
		t.Errorf("port line returned version %q", v)
	}
}

func TestVanillaPort(t *testing.T) {
	tests := []struct {
		line   string
		marker string
		port   uint16
		ok     bool
	}{
		{"[18:02:10] [Server thread/INFO]: Starting Minecraft server on *:25565", "Starting Minecraft server on", 25565, true},
		{"[18:02:27] [Server thread/INFO]: RCON running on 0.0.0.0:25575", "RCON running on", 25575, true},
		{"[18:02:27] [Query Listener #1/INFO]: Query running on [::]:25566", "Query running on", 25566, true},
		{"[18:02:27] [Server thread/INFO]: RCON running on 0.0.0.0:25575", "Query running on", 0, false},
		{"[18:02:27] [Server thread/INFO]: Query running on", "Query running on", 0, false},
		{"[18:02:27] [Server thread/INFO]: Query running on 0.0.0.0:99999", "Query running on", 0, false},
	}

	for _, tt := range tests {
		port, ok := VanillaPort(tt.line, tt.marker)
		if ok != tt.ok || port != tt.port {
			t.Errorf("%q/%q: got %d %v, want %d %v", tt.line, tt.marker, port, ok, tt.port, tt.ok)
		}
	}
}

func TestPort(t *testing.T) {
	tests := []struct {
		line        string
		mustContain string
		port        uint16
		ok          bool
	}{
		{"[12:00:05 INFO]: [dynmap] Web server started on address 0.0.0.0:8123", "Web server started on", 8123, true},
		{"[12:00:05 INFO]: [Votifier] Votifier enabled on socket /127.0.0.1:8192.", "Votifier enabled on socket", 8192, true},
		{"[12:00:05] [VoiceChatServerThread/INFO] (voicechat) Voice chat server started at port 24454", "Voice chat server started", 24454, true},
		{"[12:00:05 INFO]: [Geyser-Spigot] Started Geyser on 0.0.0.0:19132", "Started Geyser on", 19132, true},
		{"[12:00:05 INFO]: [dynmap] Web server started on address 0.0.0.0:8123", "Started Geyser on", 0, false},
		{"[12:00:05 INFO]: [dynmap] Web server started", "Web server started", 0, false},
		{"[12:00:05 INFO]: anything :8123", "", 0, false},
	}

	for _, tt := range tests {
		name, port, ok := Port("svc", tt.line, tt.mustContain)
		if ok != tt.ok || port != tt.port {
			t.Errorf("%q/%q: got %d %v, want %d %v", tt.line, tt.mustContain, port, ok, tt.port, tt.ok)
			continue
		}
		if ok && name != "svc" {
			t.Errorf("name = %q, want svc", name)
		}
	}
}
