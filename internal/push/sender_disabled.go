//go:build !protogen

package push

// NewGRPCSender is compiled in without generated protobuf code; the gRPC
// delivery path is unavailable and callers fall back to the webhook sender.
func NewGRPCSender(_ string) (Sender, error) {
	return nil, nil
}
