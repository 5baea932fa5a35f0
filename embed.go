package burningtown

import (
	_ "embed"
)

// Embed the user-facing message catalog
//
//go:embed messages.yaml
var MessagesYAML []byte
