package x11

import (
	"github.com/jezek/xgb"
	"github.com/jezek/xgb/xproto"
)

// desktopAll is the _NET_WM_DESKTOP value of windows shown on every desktop.
const desktopAll = 0xffffffff

func getProperty(conn *xgb.Conn, window xproto.Window, atom xproto.Atom) (*xproto.GetPropertyReply, error) {
	return xproto.GetProperty(conn, false, window, atom, xproto.GetPropertyTypeAny, 0, 1<<16).Reply()
}

func cardinals(conn *xgb.Conn, window xproto.Window, atom xproto.Atom) ([]uint32, error) {
	reply, err := getProperty(conn, window, atom)
	if err != nil {
		return nil, err
	}
	if reply.Format != 32 {
		return nil, nil
	}
	return decodeCardinals(reply.Value), nil
}

func cardinal(conn *xgb.Conn, window xproto.Window, atom xproto.Atom) (uint32, bool, error) {
	values, err := cardinals(conn, window, atom)
	if err != nil || len(values) == 0 {
		return 0, false, err
	}
	return values[0], true, nil
}

func text(conn *xgb.Conn, window xproto.Window, atom xproto.Atom) (string, error) {
	reply, err := getProperty(conn, window, atom)
	if err != nil {
		return "", err
	}
	if reply.Format != 8 {
		return "", nil
	}
	return string(reply.Value), nil
}

func changeAtoms(conn *xgb.Conn, window xproto.Window, property xproto.Atom, values ...xproto.Atom) error {
	data := make([]uint32, len(values))
	for i, v := range values {
		data[i] = uint32(v)
	}
	return changeProperty32(conn, window, property, xproto.AtomAtom, data...)
}

func changeProperty32(conn *xgb.Conn, window xproto.Window, property, typ xproto.Atom, values ...uint32) error {
	return xproto.ChangePropertyChecked(conn, xproto.PropModeReplace, window, property, typ, 32, uint32(len(values)), encodeCardinals(values)).Check()
}

func decodeCardinals(b []byte) []uint32 {
	values := make([]uint32, 0, len(b)/4)
	for i := 0; i+4 <= len(b); i += 4 {
		values = append(values, xgb.Get32(b[i:]))
	}
	return values
}

func encodeCardinals(values []uint32) []byte {
	b := make([]byte, 4*len(values))
	for i, v := range values {
		xgb.Put32(b[4*i:], v)
	}
	return b
}

// desktopMask maps a desktop index to a tag mask, 0 when the window is on every desktop.
func desktopMask(desktop uint32) uint32 {
	if desktop >= 32 {
		return 0
	}
	return 1 << desktop
}

// strutPartial reserves height pixels at the top of the monitor at x spanning width.
func strutPartial(y, height, x, width int) []uint32 {
	return []uint32{
		0, 0, uint32(y + height), 0, // left, right, top, bottom
		0, 0, 0, 0, // left and right spans
		uint32(x), uint32(x + width - 1), // top span
		0, 0, // bottom span
	}
}
