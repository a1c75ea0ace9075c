package mock_mailer

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/visionafrica/debate-portal/pkg/mailer"
)

type Sender struct {
	mock.Mock
}

func (m *Sender) Send(ctx context.Context, msg mailer.Message) error {
	args := m.Called(ctx, msg)

	return args.Error(0)
}
