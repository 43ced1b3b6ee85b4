package uistate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestModalTransitions(t *testing.T) {
	var m Modal
	assert.False(t, m.IsOpen())

	m = m.Open()
	assert.True(t, m.IsOpen())
	assert.Empty(t, m.Selection())

	m = m.OpenWith("wallet-1")
	assert.True(t, m.IsOpen())
	assert.Equal(t, "wallet-1", m.Selection())

	m = m.Close()
	assert.False(t, m.IsOpen())
	assert.Empty(t, m.Selection(), "closing clears the selection")
}

func TestModalsApplyDoesNotMutateReceiver(t *testing.T) {
	var before Modals
	after, err := before.Apply(Command{Name: "wallet-details", Action: "open", Selection: "w-9"})
	require.NoError(t, err)

	assert.False(t, before[ModalWalletDetails].IsOpen())
	assert.True(t, after[ModalWalletDetails].IsOpen())
	assert.Equal(t, "w-9", after[ModalWalletDetails].Selection())
}

func TestModalsApplyRejectsUnknown(t *testing.T) {
	_, err := Modals{}.Apply(Command{Name: "transfer", Action: "open"})
	assert.ErrorIs(t, err, ErrUnknownModal)

	_, err = Modals{}.Apply(Command{Name: "add-wallet", Action: "toggle"})
	assert.Error(t, err)
}

func TestStoreKeepsOwnersApart(t *testing.T) {
	s := NewStore()
	_, err := s.Apply("u-1", Command{Name: "add-wallet", Action: "open"})
	require.NoError(t, err)

	assert.True(t, s.Get("u-1")[ModalAddWallet].IsOpen())
	assert.False(t, s.Get("u-2")[ModalAddWallet].IsOpen())

	views := s.Get("u-1").Views()
	require.Len(t, views, 3)
	assert.Equal(t, ModalView{Name: ModalAddWallet, Open: true}, views[0])
	assert.Equal(t, []string{"u-1"}, s.Owners())

	s.Forget("u-1")
	assert.Empty(t, s.Owners())
}
