package x11

import (
	"github.com/jezek/xgb"
	"github.com/jezek/xgb/xproto"
)

// Glyph of the X "cursor" font.
const cursorLeftPtr = 68

func createCursor(conn *xgb.Conn, glyph uint16) (xproto.Cursor, error) {
	font, err := xproto.NewFontId(conn)
	if err != nil {
		return 0, err
	}

	cursor, err := xproto.NewCursorId(conn)
	if err != nil {
		return 0, err
	}

	if err := xproto.OpenFontChecked(conn, font, uint16(len("cursor")), "cursor").Check(); err != nil {
		return 0, err
	}
	defer xproto.CloseFont(conn, font)

	// Mask glyph follows the source glyph, white on black
	if err := xproto.CreateGlyphCursorChecked(conn, cursor, font, font,
		glyph, glyph+1,
		0xffff, 0xffff, 0xffff,
		0, 0, 0).Check(); err != nil {
		return 0, err
	}

	return cursor, nil
}
