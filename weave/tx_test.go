package weave

import (
	"testing"

	"github.com/iov-one/tradeweave/errors"
	"github.com/stretchr/testify/assert"
)

type noteMsg struct {
	Text string
	Err  error
}

func (m *noteMsg) Marshal() ([]byte, error) { return []byte(m.Text), nil }
func (m *noteMsg) Unmarshal(raw []byte) error {
	m.Text = string(raw)
	return nil
}
func (m *noteMsg) Path() string    { return "test/note" }
func (m *noteMsg) Validate() error { return m.Err }

type otherMsg struct{ noteMsg }

func (m *otherMsg) Path() string { return "test/other" }

type msgTx struct {
	Msg Msg
	Err error
}

func (tx *msgTx) Marshal() ([]byte, error) { return nil, nil }
func (tx *msgTx) Unmarshal([]byte) error   { return nil }
func (tx *msgTx) GetMsg() (Msg, error)     { return tx.Msg, tx.Err }

func TestLoadMsg(t *testing.T) {
	cases := map[string]struct {
		tx      Tx
		dest    interface{}
		want    interface{}
		wantErr *errors.Error
	}{
		"message copied into destination": {
			tx:   &msgTx{Msg: &noteMsg{Text: "hi"}},
			dest: &noteMsg{},
			want: &noteMsg{Text: "hi"},
		},
		"nil message": {
			tx:      &msgTx{},
			dest:    &noteMsg{},
			wantErr: errors.ErrState,
		},
		"typed nil message": {
			tx:      &msgTx{Msg: (*noteMsg)(nil)},
			dest:    &noteMsg{},
			wantErr: errors.ErrState,
		},
		"message cannot be read": {
			tx:      &msgTx{Err: errors.ErrInput},
			dest:    &noteMsg{},
			wantErr: errors.ErrInput,
		},
		"destination not a pointer": {
			tx:      &msgTx{Msg: &noteMsg{}},
			dest:    noteMsg{},
			wantErr: errors.ErrType,
		},
		"nil destination": {
			tx:      &msgTx{Msg: &noteMsg{}},
			dest:    (*noteMsg)(nil),
			wantErr: errors.ErrType,
		},
		"wrong destination type": {
			tx:      &msgTx{Msg: &otherMsg{}},
			dest:    &noteMsg{},
			wantErr: errors.ErrType,
		},
		"message fails validation": {
			tx:      &msgTx{Msg: &noteMsg{Err: errors.ErrAmount}},
			dest:    &noteMsg{},
			wantErr: errors.ErrAmount,
		},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			err := LoadMsg(tc.tx, tc.dest)
			if !tc.wantErr.Is(err) {
				t.Fatalf("want %v error, got %+v", tc.wantErr, err)
			}
			if tc.wantErr == nil {
				assert.Equal(t, tc.want, tc.dest)
			}
		})
	}
}

func TestGetPath(t *testing.T) {
	assert.Equal(t, "test/note", GetPath(&msgTx{Msg: &noteMsg{}}))
	assert.Equal(t, missingPath, GetPath(&msgTx{Err: errors.ErrInput}))
	assert.Equal(t, missingPath, GetPath(nil))
}
