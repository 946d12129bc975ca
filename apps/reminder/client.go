package reminder

import (
	"time"

	"github.com/magnusmorton/experiment-umi/proxy"
	"github.com/magnusmorton/experiment-umi/wire"
)

// Proxy is the Remote half of ReadyReminderServer.
type Proxy struct {
	*proxy.Remote
}

// NewRemote constructs a fresh queue on address.
func NewRemote(address string) (*Proxy, error) {
	r, err := proxy.Init(address, "reminder.New", nil)
	if err != nil {
		return nil, err
	}
	return &Proxy{r}, nil
}

// SubmitEvent queues content to become extractable at readyAt.
func (p *Proxy) SubmitEvent(content string, readyAt time.Time) (int, error) {
	contentEnc, err := wire.EncodeValue(content)
	if err != nil {
		return 0, err
	}
	readyAtEnc, err := wire.EncodeValue(readyAt)
	if err != nil {
		return 0, err
	}
	result, err := proxy.Call(p.Address, "reminder.SubmitEvent", []wire.Variable{
		p.AsArgument(false, true),
		wire.OwnedLocal(contentEnc),
		wire.OwnedLocal(readyAtEnc),
	}, wire.OpOwned)
	if err != nil {
		return 0, err
	}
	return wire.DecodeValue[int](result.Encoded)
}

// ExtractEvent pops the earliest-ready event, or returns nil if none is
// ready yet.
func (p *Proxy) ExtractEvent() (*Entry, error) {
	result, err := proxy.Call(p.Address, "reminder.ExtractEvent", []wire.Variable{
		p.AsArgument(false, true),
	}, wire.OpOwned)
	if err != nil {
		return nil, err
	}
	return wire.DecodeValue[*Entry](result.Encoded)
}
