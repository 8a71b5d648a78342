package player

// Error codes carried by Event.Code. The values follow the embedded-player
// protocol so remote and local backends report failures the same way.
const (
	CodeInvalidID    = 2
	CodeUnplayable   = 5
	CodeNotFound     = 100
	CodeEmbedBlocked = 101
	CodeEmbedAlt     = 150
)
