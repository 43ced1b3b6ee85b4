// Package uistate keeps the open/closed state of the dashboard modals per signed-in user.
package uistate

import (
	"sort"
	"sync"

	"github.com/pkg/errors"
)

type ModalName string

const (
	ModalAddWallet      ModalName = "add-wallet"
	ModalAddBankAccount ModalName = "add-bank-account"
	ModalWalletDetails  ModalName = "wallet-details"
)

var ModalNames = []ModalName{ModalAddWallet, ModalAddBankAccount, ModalWalletDetails}

func ParseModalName(s string) (ModalName, bool) {
	for _, n := range ModalNames {
		if string(n) == s {
			return n, true
		}
	}
	return "", false
}

// Modal is either closed or open with an optional selection. The zero value is closed.
type Modal struct {
	open      bool
	selection string
}

func (m Modal) Open() Modal { return Modal{open: true} }

func (m Modal) OpenWith(selection string) Modal { return Modal{open: true, selection: selection} }

func (m Modal) Close() Modal { return Modal{} }

func (m Modal) IsOpen() bool { return m.open }

// Selection is empty while the modal is closed.
func (m Modal) Selection() string { return m.selection }

type ModalView struct {
	Name      ModalName `json:"name"`
	Open      bool      `json:"open"`
	Selection string    `json:"selection,omitempty"`
}

// Modals is one owner's set of modal states.
type Modals map[ModalName]Modal

func (ms Modals) Views() []ModalView {
	views := make([]ModalView, 0, len(ModalNames))
	for _, n := range ModalNames {
		m := ms[n]
		views = append(views, ModalView{Name: n, Open: m.IsOpen(), Selection: m.Selection()})
	}
	return views
}

type Command struct {
	Name      string `json:"name" binding:"required"`
	Action    string `json:"action" binding:"required,oneof=open close"`
	Selection string `json:"selection"`
}

var ErrUnknownModal = errors.New("unknown modal")

// Apply returns the modal set after cmd. The receiver is left untouched.
func (ms Modals) Apply(cmd Command) (Modals, error) {
	name, ok := ParseModalName(cmd.Name)
	if !ok {
		return nil, errors.Wrap(ErrUnknownModal, cmd.Name)
	}
	next := make(Modals, len(ms)+1)
	for k, v := range ms {
		next[k] = v
	}
	switch cmd.Action {
	case "open":
		if cmd.Selection != "" {
			next[name] = next[name].OpenWith(cmd.Selection)
		} else {
			next[name] = next[name].Open()
		}
	case "close":
		next[name] = next[name].Close()
	default:
		return nil, errors.Errorf("unknown modal action %q", cmd.Action)
	}
	return next, nil
}

// Store holds the modal sets of every session owner.
type Store struct {
	mu     sync.Mutex
	owners map[string]Modals
}

func NewStore() *Store {
	return &Store{owners: make(map[string]Modals)}
}

func (s *Store) Get(owner string) Modals {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.owners[owner]
}

func (s *Store) Apply(owner string, cmd Command) (Modals, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	next, err := s.owners[owner].Apply(cmd)
	if err != nil {
		return nil, err
	}
	s.owners[owner] = next
	return next, nil
}

// Forget drops owner's state, on logout.
func (s *Store) Forget(owner string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.owners, owner)
}

func (s *Store) Owners() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	owners := make([]string, 0, len(s.owners))
	for o := range s.owners {
		owners = append(owners, o)
	}
	sort.Strings(owners)
	return owners
}
