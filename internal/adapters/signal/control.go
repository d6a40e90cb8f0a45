package signal

func (ctl *Controller) handlePing(
	conn *WsConn,
) {
	resp := struct {
		Type string `json:"type"`
	}{
		Type: "pong",
	}
	ctl.sendJSON(conn, resp)
}
