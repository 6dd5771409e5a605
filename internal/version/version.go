// ABOUTME: Version information for audiokit
// ABOUTME: Product strings reported by the CLI and written into stream tags
package version

const (
	// Version is the audiokit release
	Version = "0.1.0"

	// Product is the tool name
	Product = "audiokit"

	// Manufacturer is the publisher
	Manufacturer = "Sendspin"
)

// Vendor returns the encoder vendor string written into container tags
func Vendor() string {
	return Product + " " + Version
}
