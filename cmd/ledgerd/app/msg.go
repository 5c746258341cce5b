package app

import (
	"github.com/iov-one/ledger/app"
	"github.com/iov-one/ledger/x/cash"
	"github.com/iov-one/ledger/x/gov"
	"github.com/iov-one/ledger/x/revenue"
	"github.com/iov-one/ledger/x/roles"
	"github.com/iov-one/ledger/x/royalty"
	"github.com/iov-one/ledger/x/token"
)

// Messages returns the decoder of every message the ledger accepts.
func Messages() *app.MsgRegistry {
	return app.NewMsgRegistry(
		&roles.GrantMsg{},
		&roles.RevokeMsg{},

		&cash.SendMsg{},

		&token.CreateVaultMsg{},
		&token.TransferMsg{},
		&token.RedeemMsg{},

		&royalty.CreatePoolMsg{},
		&royalty.ReceiveMsg{},
		&royalty.WithdrawMsg{},
		&royalty.BatchWithdrawMsg{},
		&royalty.UpdateBeneficiariesMsg{},
		&royalty.RemoveBeneficiaryMsg{},

		&revenue.AddRevenueMsg{},
		&revenue.ClaimMsg{},

		&gov.CreateProposalMsg{},
		&gov.VoteMsg{},
		&gov.ExecuteMsg{},
		&gov.CancelMsg{},
		&gov.UpdateConfigurationMsg{},
	)
}
