package tracker

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
	"go.uber.org/zap"

	"fogswap/pkg/client"
	"fogswap/pkg/tracker/mocks"
	"fogswap/pkg/types"
)

const txID = "S7ZulO3j16"

func info(status string) *types.TransactionInfo {
	return &types.TransactionInfo{ID: txID, Status: status}
}

func newMockSource(t *testing.T) *mocks.MockTransactionSource {
	ctrl := gomock.NewController(t)
	t.Cleanup(ctrl.Finish)
	return mocks.NewMockTransactionSource(ctrl)
}

func TestWatch_StopsOnStopStatus(t *testing.T) {
	source := newMockSource(t)
	gomock.InOrder(
		source.EXPECT().GetTransactionInfo(gomock.Any(), txID).Return(info("waiting"), nil),
		source.EXPECT().GetTransactionInfo(gomock.Any(), txID).Return(info("waiting"), nil),
		source.EXPECT().GetTransactionInfo(gomock.Any(), txID).Return(info("confirming"), nil),
		source.EXPECT().GetTransactionInfo(gomock.Any(), txID).Return(info("Finished"), nil),
	)

	tr := New(source, time.Millisecond, []string{"finished"}, zap.NewNop())

	var seen []string
	final, err := tr.Watch(context.Background(), txID, func(i *types.TransactionInfo) {
		seen = append(seen, i.Status)
	})
	require.NoError(t, err)
	assert.Equal(t, "Finished", final.Status)
	assert.Equal(t, []string{"waiting", "confirming", "Finished"}, seen)
}

func TestWatch_ContinuesAfterTransportError(t *testing.T) {
	source := newMockSource(t)
	gomock.InOrder(
		source.EXPECT().GetTransactionInfo(gomock.Any(), txID).Return(nil, errors.New("connection reset")),
		source.EXPECT().GetTransactionInfo(gomock.Any(), txID).Return(nil, &client.StatusError{StatusCode: 502}),
		source.EXPECT().GetTransactionInfo(gomock.Any(), txID).Return(info("failed"), nil),
	)

	tr := New(source, time.Millisecond, []string{"finished", "failed"}, nil)

	final, err := tr.Watch(context.Background(), txID, nil)
	require.NoError(t, err)
	assert.Equal(t, "failed", final.Status)
}

func TestWatch_ReturnsAPIError(t *testing.T) {
	source := newMockSource(t)
	source.EXPECT().
		GetTransactionInfo(gomock.Any(), txID).
		Return(nil, &client.APIError{Op: client.OpGetTransactionInfo, Message: "not found"})

	tr := New(source, time.Millisecond, []string{"finished"}, nil)

	final, err := tr.Watch(context.Background(), txID, nil)
	assert.Nil(t, final)
	assert.ErrorIs(t, err, client.ErrGetTransactionInfo)
}

func TestWatch_ReturnsInvalidRequest(t *testing.T) {
	source := newMockSource(t)
	source.EXPECT().
		GetTransactionInfo(gomock.Any(), "   ").
		Return(nil, fmt.Errorf("%w: transaction id is required", client.ErrInvalidRequest)).
		Times(1)

	tr := New(source, time.Millisecond, []string{"finished"}, nil)

	final, err := tr.Watch(context.Background(), "   ", nil)
	assert.Nil(t, final)
	assert.ErrorIs(t, err, client.ErrInvalidRequest)
}

func TestWatch_ClientErrorStatus(t *testing.T) {
	tests := []struct {
		name      string
		status    int
		permanent bool
	}{
		{name: "not found", status: http.StatusNotFound, permanent: true},
		{name: "bad request", status: http.StatusBadRequest, permanent: true},
		{name: "request timeout", status: http.StatusRequestTimeout, permanent: false},
		{name: "too many requests", status: http.StatusTooManyRequests, permanent: false},
		{name: "bad gateway", status: http.StatusBadGateway, permanent: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			source := newMockSource(t)
			statusErr := &client.StatusError{StatusCode: tt.status}
			if tt.permanent {
				source.EXPECT().GetTransactionInfo(gomock.Any(), txID).Return(nil, statusErr).Times(1)
			} else {
				gomock.InOrder(
					source.EXPECT().GetTransactionInfo(gomock.Any(), txID).Return(nil, statusErr),
					source.EXPECT().GetTransactionInfo(gomock.Any(), txID).Return(info("finished"), nil),
				)
			}

			tr := New(source, time.Millisecond, []string{"finished"}, nil)

			final, err := tr.Watch(context.Background(), txID, nil)
			if tt.permanent {
				assert.Nil(t, final)
				assert.ErrorIs(t, err, client.ErrSendRequest)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "finished", final.Status)
		})
	}
}

func TestWatch_Cancelled(t *testing.T) {
	source := newMockSource(t)
	source.EXPECT().GetTransactionInfo(gomock.Any(), txID).Return(info("waiting"), nil).MinTimes(1)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()

	tr := New(source, 5*time.Millisecond, []string{"finished"}, nil)

	final, err := tr.Watch(ctx, txID, nil)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	require.NotNil(t, final)
	assert.Equal(t, "waiting", final.Status)
}

func TestWatch_RejectsNonPositiveInterval(t *testing.T) {
	tr := New(newMockSource(t), 0, []string{"finished"}, nil)

	_, err := tr.Watch(context.Background(), txID, nil)
	assert.Error(t, err)
}

func TestIsStopStatus(t *testing.T) {
	tr := New(nil, time.Second, []string{" Finished ", "REFUNDED"}, nil)

	assert.True(t, tr.IsStopStatus("finished"))
	assert.True(t, tr.IsStopStatus("refunded"))
	assert.False(t, tr.IsStopStatus("waiting"))
}
