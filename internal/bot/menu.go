package bot

// The button captions below are the wire contract with the presentation
// layer: the keyboard sends them back verbatim as message text, so dispatch
// compares against these exact strings.
const (
	LabelStart      = "/start"
	LabelCancel     = "❌ Cancel"
	LabelBalance    = "💰 Balance"
	LabelDeposit    = "💳 Deposit"
	LabelWithdraw   = "💸 Withdraw"
	LabelTransfer   = "🔄 Transfer"
	LabelHistory    = "📜 History"
	LabelStatistics = "📊 Statistics"
)

// Command identifies one of the fixed menu actions.
type Command int

const (
	CmdBalance Command = iota
	CmdDeposit
	CmdWithdraw
	CmdTransfer
	CmdHistory
	CmdStatistics
)

var menuCommands = map[string]Command{
	LabelBalance:    CmdBalance,
	LabelDeposit:    CmdDeposit,
	LabelWithdraw:   CmdWithdraw,
	LabelTransfer:   CmdTransfer,
	LabelHistory:    CmdHistory,
	LabelStatistics: CmdStatistics,
}

// ParseCommand maps message text onto the closed menu vocabulary.
func ParseCommand(text string) (Command, bool) {
	cmd, ok := menuCommands[text]
	return cmd, ok
}

// MainMenu is the two-column action keyboard shown after every completed
// interaction.
func MainMenu() [][]string {
	return [][]string{
		{LabelBalance, LabelDeposit},
		{LabelWithdraw, LabelTransfer},
		{LabelHistory, LabelStatistics},
	}
}

// CancelMenu is shown while waiting for multi-step input.
func CancelMenu() [][]string {
	return [][]string{{LabelCancel}}
}
