// Package notify delivers call alerts over the best channel the host offers.
package notify

import (
	"context"
	"sync"
	"time"

	"github.com/ds124wfegd/showcaller/pkg/retry"

	"github.com/sirupsen/logrus"
)

// Gate answers whether the native channel may be used.
type Gate interface {
	CanNotifyNatively() bool
	IsPlatformNotificationCapable() bool
}

// Notifier emits a native notification.
type Notifier interface {
	Notify(ctx context.Context, title, body string) error
}

// BannerHost renders the in-app fallback.
type BannerHost interface {
	Show(title, body string) string
}

type Options struct {
	Gate          Gate
	Native        Notifier
	Banners       BannerHost
	Audio         Player
	Cue           Cue
	NativeTimeout time.Duration
	Retry         *retry.Manager
}

// Dispatcher never blocks its caller on audio or network and never panics.
type Dispatcher struct {
	gate          Gate
	native        Notifier
	banners       BannerHost
	audio         Player
	cue           Cue
	nativeTimeout time.Duration
	retry         *retry.Manager

	wg  sync.WaitGroup
	log *logrus.Entry
}

func NewDispatcher(opts Options) *Dispatcher {
	d := &Dispatcher{
		gate:          opts.Gate,
		native:        opts.Native,
		banners:       opts.Banners,
		audio:         opts.Audio,
		cue:           opts.Cue,
		nativeTimeout: opts.NativeTimeout,
		retry:         opts.Retry,
		log:           logrus.WithField("component", "dispatcher"),
	}
	if d.audio == nil {
		d.audio = SilentPlayer{}
	}
	if d.cue == nil {
		d.cue = DefaultCue
	}
	if d.nativeTimeout <= 0 {
		d.nativeTimeout = 10 * time.Second
	}
	if d.retry == nil {
		d.retry = retry.NewManager(0, 0)
	}
	return d
}

// Dispatch alerts the user about a fired call.
func (d *Dispatcher) Dispatch(title, body string) {
	defer func() {
		if r := recover(); r != nil {
			d.log.Errorf("Dispatch panicked: %v", r)
		}
	}()

	d.playCue()

	switch {
	case d.gate != nil && d.gate.CanNotifyNatively():
		d.sendNative(title, body)
	case d.gate == nil || !d.gate.IsPlatformNotificationCapable():
		d.showBanner(title, body)
	default:
		// native channel exists but permission was not granted
		d.log.WithField("title", title).Debug("Native permission not granted, audio cue only")
	}
}

// Wait blocks until audio and native sends started by Dispatch are done.
func (d *Dispatcher) Wait() {
	d.wg.Wait()
}

func (d *Dispatcher) playCue() {
	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		defer func() {
			if r := recover(); r != nil {
				d.log.Warnf("Audio cue panicked: %v", r)
			}
		}()

		if err := d.audio.Play(d.cue); err != nil {
			d.log.WithError(err).Warn("Audio cue failed")
		}
	}()
}

func (d *Dispatcher) sendNative(title, body string) {
	if d.native == nil {
		d.log.Error("Native permission granted but no native notifier configured")
		return
	}

	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		defer func() {
			if r := recover(); r != nil {
				d.log.Errorf("Native notification panicked: %v", r)
			}
		}()

		ctx, cancel := context.WithTimeout(context.Background(), d.nativeTimeout)
		defer cancel()

		err := d.retry.Do(ctx, func(ctx context.Context) error {
			return d.native.Notify(ctx, title, body)
		})
		if err != nil {
			d.log.WithError(err).WithField("title", title).Error("Native notification failed")
			return
		}
		d.log.WithField("title", title).Info("Native notification sent")
	}()
}

func (d *Dispatcher) showBanner(title, body string) {
	if d.banners == nil {
		d.log.WithField("title", title).Warn("No banner host, alert is audio only")
		return
	}

	defer func() {
		if r := recover(); r != nil {
			d.log.Errorf("Banner insertion panicked: %v", r)
		}
	}()

	id := d.banners.Show(title, body)
	if id == "" {
		d.log.WithField("title", title).Warn("Banner board is closed")
		return
	}
	d.log.WithFields(logrus.Fields{"title": title, "banner_id": id}).Info("Banner shown")
}
