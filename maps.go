// SPDX-License-Identifier: GPL-2.0-or-later

package main

import (
	"os"
	"path"
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"q2map/bsp"
	"q2map/filesystem"
	"q2map/math/vec"
)

// loadMap resolves name as a plain file first and then through the game
// filesystem, where "base1" means "maps/base1.bsp".
func loadMap(name string) (*bsp.Map, error) {
	if fi, err := os.Stat(name); err == nil && !fi.IsDir() {
		data, err := os.ReadFile(name)
		if err != nil {
			return nil, errors.Wrapf(err, "could not read %s", name)
		}
		return bsp.Parse(name, data)
	}
	n := name
	if filesystem.Ext(n) == "" {
		n = path.Join("maps", n+".bsp")
	}
	return bsp.Load(n)
}

// parseVec reads three numbers, either as separate args or as one string
// "x y z".
func parseVec(args ...string) (vec.Vec3, error) {
	var f []string
	for _, a := range args {
		f = append(f, strings.Fields(a)...)
	}
	if len(f) != 3 {
		return vec.Vec3{}, errors.Errorf("need 3 coordinates, got %d", len(f))
	}
	var v vec.Vec3
	for i, s := range f {
		x, err := strconv.ParseFloat(s, 32)
		if err != nil {
			return vec.Vec3{}, errors.Wrapf(err, "bad coordinate %q", s)
		}
		v[i] = float32(x)
	}
	return v, nil
}

var contentsNames = []struct {
	bit  int32
	name string
}{
	{bsp.ContentsSolid, "solid"},
	{bsp.ContentsWindow, "window"},
	{bsp.ContentsAux, "aux"},
	{bsp.ContentsLava, "lava"},
	{bsp.ContentsSlime, "slime"},
	{bsp.ContentsWater, "water"},
	{bsp.ContentsMist, "mist"},
	{bsp.ContentsAreaPortal, "areaportal"},
	{bsp.ContentsPlayerClip, "playerclip"},
	{bsp.ContentsMonsterClip, "monsterclip"},
	{bsp.ContentsCurrent0, "current_0"},
	{bsp.ContentsCurrent90, "current_90"},
	{bsp.ContentsCurrent180, "current_180"},
	{bsp.ContentsCurrent270, "current_270"},
	{bsp.ContentsCurrentUp, "current_up"},
	{bsp.ContentsCurrentDown, "current_down"},
	{bsp.ContentsOrigin, "origin"},
	{bsp.ContentsMonster, "monster"},
	{bsp.ContentsDeadMonster, "deadmonster"},
	{bsp.ContentsDetail, "detail"},
	{bsp.ContentsTranslucent, "translucent"},
	{bsp.ContentsLadder, "ladder"},
}

// contentsString names the bits of c, "empty" for 0.
func contentsString(c int32) string {
	if c == 0 {
		return "empty"
	}
	var r []string
	for _, n := range contentsNames {
		if c&n.bit != 0 {
			r = append(r, n.name)
			c &^= n.bit
		}
	}
	if c != 0 {
		r = append(r, "0x"+strconv.FormatInt(int64(uint32(c)), 16))
	}
	return strings.Join(r, "|")
}
