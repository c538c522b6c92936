package bus

import "slices"

// Topic is a logical interaction name from the fixed catalogue below.
// Concrete channel names are derived from it, never written by hand.
type Topic string

const (
	TopicWallet                      Topic = "wallet"
	TopicWalletUIBalance             Topic = "wallet-ui-balance"
	TopicViewMainStatic              Topic = "view-main-static"
	TopicViewSidebarState            Topic = "view-sidebar-state"
	TopicViewOnDidChangeSidebarState Topic = "view-on-did-change-sidebar-state"
)

var catalogue = []Topic{
	TopicWallet,
	TopicWalletUIBalance,
	TopicViewMainStatic,
	TopicViewSidebarState,
	TopicViewOnDidChangeSidebarState,
}

// Topics returns the topic catalogue.
func Topics() []Topic {
	return slices.Clone(catalogue)
}

// Valid reports whether t is part of the catalogue.
func (t Topic) Valid() bool {
	return slices.Contains(catalogue, t)
}

// Name returns the base channel name for t.
func (t Topic) Name() Name {
	return Name(t)
}

// Name is a concrete channel name. Derived names can be derived again, so
// a static "get" endpoint can itself be called with SendReceive.
type Name string

const (
	suffixSend    = "send"
	suffixReceive = "receive"
	suffixGet     = "get"
	suffixSet     = "set"
	suffixRun     = "run"
)

// SendReceiveNames is the request/response pair for one endpoint.
type SendReceiveNames struct {
	Send    Name
	Receive Name
}

// GetSetNames is the static property pair for one endpoint.
type GetSetNames struct {
	Get Name
	Set Name
}

// GetRunNames is the static action pair for one endpoint.
type GetRunNames struct {
	Get Name
	Run Name
}

// SendReceive derives the request and response names for n.
func SendReceive(n Name) SendReceiveNames {
	return SendReceiveNames{Send: n + suffixSend, Receive: n + suffixReceive}
}

// GetSet derives the static property names for n.
func GetSet(n Name) GetSetNames {
	return GetSetNames{Get: n + suffixGet, Set: n + suffixSet}
}

// GetRun derives the static action names for n.
func GetRun(n Name) GetRunNames {
	return GetRunNames{Get: n + suffixGet, Run: n + suffixRun}
}
