package x11

import (
	"fmt"

	"github.com/jezek/xgb"
	"github.com/jezek/xgb/xproto"
)

type atoms struct {
	wmWindowType     xproto.Atom
	wmWindowTypeDock xproto.Atom
	wmState          xproto.Atom
	wmStateSticky    xproto.Atom
	wmStateAbove     xproto.Atom
	wmDesktop        xproto.Atom
	wmStrut          xproto.Atom
	wmStrutPartial   xproto.Atom
	wmName           xproto.Atom
	currentDesktop   xproto.Atom
	activeWindow     xproto.Atom
	clientList       xproto.Atom
}

func internAtoms(conn *xgb.Conn) (atoms, error) {
	var a atoms
	targets := []struct {
		name string
		atom *xproto.Atom
	}{
		{"_NET_WM_WINDOW_TYPE", &a.wmWindowType},
		{"_NET_WM_WINDOW_TYPE_DOCK", &a.wmWindowTypeDock},
		{"_NET_WM_STATE", &a.wmState},
		{"_NET_WM_STATE_STICKY", &a.wmStateSticky},
		{"_NET_WM_STATE_ABOVE", &a.wmStateAbove},
		{"_NET_WM_DESKTOP", &a.wmDesktop},
		{"_NET_WM_STRUT", &a.wmStrut},
		{"_NET_WM_STRUT_PARTIAL", &a.wmStrutPartial},
		{"_NET_WM_NAME", &a.wmName},
		{"_NET_CURRENT_DESKTOP", &a.currentDesktop},
		{"_NET_ACTIVE_WINDOW", &a.activeWindow},
		{"_NET_CLIENT_LIST", &a.clientList},
	}

	cookies := make([]xproto.InternAtomCookie, len(targets))
	for i, t := range targets {
		cookies[i] = xproto.InternAtom(conn, false, uint16(len(t.name)), t.name)
	}
	for i, t := range targets {
		reply, err := cookies[i].Reply()
		if err != nil {
			return atoms{}, fmt.Errorf("intern %s: %w", t.name, err)
		}
		*t.atom = reply.Atom
	}

	return a, nil
}
