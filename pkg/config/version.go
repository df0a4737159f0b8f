package config

// Version is the version of the client, it's overridden at build time with
// -ldflags "-X github.com/vne-network/priceoracle-go/pkg/config.Version=...".
var Version = "dev"
