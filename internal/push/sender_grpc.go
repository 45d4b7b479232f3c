//go:build protogen

package push

import (
	"context"
	"time"

	"google.golang.org/protobuf/types/known/timestamppb"

	"barberdesk/libs/grpcx"
	pushv1 "barberdesk/protos/gen/push/v1"
)

type grpcSender struct {
	client pushv1.PushServiceClient
}

// NewGRPCSender dials the push delivery service. An empty address disables
// the gRPC path and callers fall back to the webhook sender.
func NewGRPCSender(addr string) (Sender, error) {
	if addr == "" {
		return nil, nil
	}
	conn, err := grpcx.Dial(context.Background(), addr, grpcx.DialOptions{Timeout: 3 * time.Second})
	if err != nil {
		return nil, err
	}
	return &grpcSender{client: pushv1.NewPushServiceClient(conn)}, nil
}

func (s *grpcSender) ProviderID() string {
	return "push-grpc"
}

func (s *grpcSender) Send(ctx context.Context, msg Message) error {
	_, err := s.client.Deliver(ctx, &pushv1.DeliverRequest{
		To:          msg.To,
		Subject:     msg.Subject,
		Body:        msg.Body,
		RequestedAt: timestamppb.New(time.Now()),
	})
	return err
}
