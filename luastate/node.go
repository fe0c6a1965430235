package luastate

import (
	"github.com/phanxgames/ember"
	lua "github.com/yuin/gopher-lua"
)

const nodeTypeName = "ember.node"

func registerNodeType(L *lua.LState) {
	mt := L.NewTypeMetatable(nodeTypeName)
	L.SetField(mt, "__index", L.SetFuncs(L.NewTable(), nodeMethods))
}

func wrapNode(L *lua.LState, n *ember.Node) *lua.LUserData {
	ud := L.NewUserData()
	ud.Value = n
	L.SetMetatable(ud, L.GetTypeMetatable(nodeTypeName))
	return ud
}

func checkNode(L *lua.LState) *ember.Node {
	ud := L.CheckUserData(1)
	if n, ok := ud.Value.(*ember.Node); ok {
		return n
	}
	L.ArgError(1, "node expected")
	return nil
}

var nodeMethods = map[string]lua.LGFunction{
	"position": func(L *lua.LState) int {
		n := checkNode(L)
		L.Push(lua.LNumber(n.X))
		L.Push(lua.LNumber(n.Y))
		return 2
	},
	"set_position": func(L *lua.LState) int {
		n := checkNode(L)
		n.SetPosition(float64(L.CheckNumber(2)), float64(L.CheckNumber(3)))
		return 0
	},
	"move": func(L *lua.LState) int {
		n := checkNode(L)
		n.SetPosition(n.X+float64(L.CheckNumber(2)), n.Y+float64(L.CheckNumber(3)))
		return 0
	},
	"set_velocity": func(L *lua.LState) int {
		n := checkNode(L)
		n.Velocity = ember.Vec2{X: float64(L.CheckNumber(2)), Y: float64(L.CheckNumber(3))}
		return 0
	},
	"kill": func(L *lua.LState) int {
		checkNode(L).Kill()
		return 0
	},
	"revive": func(L *lua.LState) int {
		n := checkNode(L)
		n.Revive(float64(L.OptNumber(2, lua.LNumber(n.X))), float64(L.OptNumber(3, lua.LNumber(n.Y))))
		return 0
	},
	"exists": func(L *lua.LState) int {
		L.Push(lua.LBool(checkNode(L).Exists))
		return 1
	},
}
