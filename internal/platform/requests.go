package platform

// ClientRequest is a window-management action a client or pager asked for
// with a client message rather than through the frame.
type ClientRequest int

const (
	RequestClose ClientRequest = iota
	RequestIconify
	RequestMaximize
	RequestRestore
	RequestToggleMaximize
)

func (r ClientRequest) String() string {
	switch r {
	case RequestClose:
		return "close"
	case RequestIconify:
		return "iconify"
	case RequestMaximize:
		return "maximize"
	case RequestRestore:
		return "restore"
	case RequestToggleMaximize:
		return "toggle-maximize"
	default:
		return "unknown"
	}
}

// ICCCM WM_STATE value requested through WM_CHANGE_STATE.
const iconicState = 3

// _NET_WM_STATE actions.
const (
	stateRemove = 0
	stateAdd    = 1
	stateToggle = 2
)

// decodeClientMessage maps a client message to a request. atomName resolves
// atoms carried in the data words.
func decodeClientMessage(msgType string, data []uint32, atomName func(uint32) string) (ClientRequest, bool) {
	switch msgType {
	case "_NET_CLOSE_WINDOW":
		return RequestClose, true
	case "WM_CHANGE_STATE":
		if len(data) > 0 && data[0] == iconicState {
			return RequestIconify, true
		}
	case "_NET_WM_STATE":
		if len(data) < 3 {
			return 0, false
		}
		action := data[0]
		maximize := false
		for _, a := range data[1:3] {
			if a == 0 {
				continue
			}
			switch atomName(a) {
			case "_NET_WM_STATE_MAXIMIZED_VERT", "_NET_WM_STATE_MAXIMIZED_HORZ":
				maximize = true
			case "_NET_WM_STATE_HIDDEN":
				if action == stateAdd {
					return RequestIconify, true
				}
			}
		}
		if !maximize {
			return 0, false
		}
		switch action {
		case stateRemove:
			return RequestRestore, true
		case stateAdd:
			return RequestMaximize, true
		case stateToggle:
			return RequestToggleMaximize, true
		}
	}
	return 0, false
}
