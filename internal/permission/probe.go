package permission

import "context"

// Prober is a native channel that can only be checked, not prompted: access
// either works or it is refused.
type Prober interface {
	Configured() bool
	CheckAccess(ctx context.Context) (bool, error)
}

type probePlatform struct {
	prober Prober
}

// FromProber turns an access check into a Platform whose single prompt
// settles to granted or denied.
func FromProber(p Prober) Platform {
	return probePlatform{prober: p}
}

func (p probePlatform) Supported() bool {
	return p.prober != nil && p.prober.Configured()
}

func (p probePlatform) Request(ctx context.Context) (State, error) {
	ok, err := p.prober.CheckAccess(ctx)
	if err != nil {
		return StateDefault, err
	}
	if ok {
		return StateGranted, nil
	}
	return StateDenied, nil
}
