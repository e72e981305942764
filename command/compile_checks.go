package command

import gocmd "github.com/goliatone/go-command"

var (
	_ gocmd.Commander[AuthenticateMessage]  = (*AuthenticateCommand)(nil)
	_ gocmd.Commander[DisconnectMessage]    = (*DisconnectCommand)(nil)
	_ gocmd.Commander[DisconnectAllMessage] = (*DisconnectAllCommand)(nil)
)
