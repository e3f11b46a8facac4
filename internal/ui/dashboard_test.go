package ui

import (
	"errors"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testModel(payCalls *int) dashboardModel {
	return dashboardModel{cfg: DashboardConfig{
		Account:  "0xf39Fd6e51aad88F6F4ce6aB8827279cffFb92266",
		Network:  "sepolia",
		Symbol:   "VOLT",
		Station:  "0xC4C7AACE8A168B7DCdD0dD0bded0D1F329aaD1dc",
		Units:    "5",
		Interval: time.Minute,
		Fetch:    func() (Stats, error) { return Stats{UnitPrice: "$1.00", Balance: "12", Credits: "3"}, nil },
		Pay: func() (string, error) {
			if payCalls != nil {
				*payCalls++
			}
			return "0x88df016429689c079f3b2f6ad39fa052532c56795b733da78a91ebe6a713944b", nil
		},
	}}
}

func keyMsg(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestStatsUpdateRendered(t *testing.T) {
	m := testModel(nil)

	updated, _ := m.Update(statsMsg{UnitPrice: "$1.00", Balance: "12", Credits: "3"})
	view := updated.(dashboardModel).View()

	assert.Contains(t, view, "$1.00")
	assert.Contains(t, view, "12")
	assert.Contains(t, view, "VOLT")
}

func TestStatsErrorShowsNotice(t *testing.T) {
	m := testModel(nil)

	updated, _ := m.Update(statsErrMsg("RPC error"))
	view := updated.(dashboardModel).View()
	assert.Contains(t, view, "RPC error")
}

func TestPayKeyStartsPayment(t *testing.T) {
	m := testModel(nil)

	updated, cmd := m.Update(keyMsg("p"))
	require.NotNil(t, cmd)
	assert.True(t, updated.(dashboardModel).paying)
	assert.Contains(t, updated.(dashboardModel).View(), "pending")
}

func TestPayKeyDisabledWhilePending(t *testing.T) {
	calls := 0
	m := testModel(&calls)

	updated, cmd := m.Update(keyMsg("p"))
	require.NotNil(t, cmd)
	cmd() // run the payment
	assert.Equal(t, 1, calls)

	// Second press while the first is unresolved is a no-op.
	_, cmd2 := updated.(dashboardModel).Update(keyMsg("p"))
	assert.Nil(t, cmd2)
	assert.Equal(t, 1, calls)
}

func TestPayDoneReenablesControl(t *testing.T) {
	m := testModel(nil)

	updated, _ := m.Update(keyMsg("p"))
	updated, _ = updated.(dashboardModel).Update(payDoneMsg("0xabc123def456abc123"))

	dm := updated.(dashboardModel)
	assert.False(t, dm.paying)
	assert.Contains(t, dm.View(), "paid")
}

func TestPayErrorReenablesControl(t *testing.T) {
	m := testModel(nil)

	updated, _ := m.Update(keyMsg("p"))
	updated, _ = updated.(dashboardModel).Update(payErrMsg("transaction rejected"))

	dm := updated.(dashboardModel)
	assert.False(t, dm.paying)
	assert.Contains(t, dm.View(), "transaction rejected")
}

func TestQuitKey(t *testing.T) {
	m := testModel(nil)
	updated, cmd := m.Update(keyMsg("q"))
	require.NotNil(t, cmd)
	assert.Empty(t, updated.(dashboardModel).View())
}

func TestFetchCmdPropagatesError(t *testing.T) {
	m := testModel(nil)
	m.cfg.Fetch = func() (Stats, error) { return Stats{}, errors.New("boom") }

	msg := m.fetchCmd()()
	assert.Equal(t, statsErrMsg("boom"), msg)
}

func TestTruncateAddr(t *testing.T) {
	assert.Equal(t, "0xC4C7…D1dc", TruncateAddr("0xC4C7AACE8A168B7DCdD0dD0bded0D1F329aaD1dc"))
	assert.Equal(t, "0xshort", TruncateAddr("0xshort"))
}
