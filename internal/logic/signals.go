package logic

import (
	"context"

	"github.com/zoobzio/capitan"
)

// Detector lifecycle signals, emitted in-process for any interested hooks.
var (
	// BaselineEstablished is emitted once every channel has a stable state.
	BaselineEstablished = capitan.NewSignal(
		"stabilizer.baseline.established",
		"All channels baselined",
	)

	// ChannelTransitioned is emitted for every debounced transition.
	ChannelTransitioned = capitan.NewSignal(
		"stabilizer.channel.transitioned",
		"Channel promoted a new stable state",
	)

	// InputReadFailed is emitted when sampling the input lines fails.
	InputReadFailed = capitan.NewSignal(
		"stabilizer.input.read.failed",
		"Input lines could not be read",
	)
)

// Field keys for detector signals.
var (
	KeyEvent    = capitan.NewStringKey("event")
	KeyChannel  = capitan.NewStringKey("channel")
	KeyOldState = capitan.NewStringKey("old_state")
	KeyNewState = capitan.NewStringKey("new_state")
	KeyError    = capitan.NewStringKey("error")
	KeyDebounce = capitan.NewDurationKey("debounce")
	KeyChannels = capitan.NewIntKey("channels")
)

// EmitTransition emits ChannelTransitioned for e.
func EmitTransition(ctx context.Context, e Event) {
	capitan.Emit(ctx, ChannelTransitioned,
		KeyEvent.Field(string(e.Type)),
		KeyChannel.Field(e.Channel),
		KeyOldState.Field(string(e.Previous)),
		KeyNewState.Field(string(e.State)),
	)
}

// EmitBaseline emits BaselineEstablished for d.
func EmitBaseline(ctx context.Context, d *Detector) {
	capitan.Emit(ctx, BaselineEstablished,
		KeyChannels.Field(len(d.channels)),
		KeyDebounce.Field(d.debounceDuration),
	)
}

// EmitReadError emits InputReadFailed for err.
func EmitReadError(ctx context.Context, err error) {
	capitan.Emit(ctx, InputReadFailed,
		KeyError.Field(err.Error()),
	)
}
