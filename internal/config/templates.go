package config

import (
	"fmt"
	"os"
)

func WriteTemplate(path string, overwrite bool) error {
	if !overwrite {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("config already exists: %s", path)
		}
	}
	return os.WriteFile(path, []byte(botTemplate), 0o600)
}

const botTemplate = `name = "kitteh"
server = "irc.libera.chat:6667"
nick = "KittehBot"
user = "kitteh"
real_name = "Kitteh IRCBot"
message_delay_ms = 1200
channels = ["#kitteh"]
admin_addr = ""
cors_origins = ["http://localhost:3000"]

[tls]
enabled = false
insecure_skip_verify = false
ca_file = ""
server_name = ""
`
