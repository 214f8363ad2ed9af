package clinic

import (
	"errors"

	"go.uber.org/zap"

	"github.com/funvibe/argscope/internal/arguments"
	"github.com/funvibe/argscope/internal/inference"
)

// Call is what a modeled native function receives.
type Call struct {
	// Context is the context the call happens in.
	Context   inference.Context
	Arguments arguments.Arguments
	// Values holds one value set per clinic parameter.
	Values []inference.ValueSet
}

// Func is the Go model of a native function.
type Func func(call Call) inference.ValueSet

// Native is a modeled native function ready to be called.
type Native func(ctx inference.Context, args arguments.Arguments) inference.ValueSet

// Repack wraps fn, the model of the native function name, so that it only
// runs for calls matching signature. A
// call that does not match infers to nothing; that is an expected outcome
// and logged at debug level. A signature the matcher cannot handle is a gap
// in the model and logged as an error.
func Repack(name, signature string, fn Func, logger *zap.Logger) (Native, error) {
	params, err := ParseCached(signature)
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	logger = logger.Named("clinic").With(zap.String("native", name))
	callee := arguments.NamedCallee(name)

	return func(ctx inference.Context, args arguments.Arguments) inference.ValueSet {
		values, err := Iterate(args, callee, params)
		if err != nil {
			if errors.Is(err, ErrNotImplemented) {
				logger.Error("clinic signature not supported",
					zap.String("signature", signature), zap.Error(err))
			} else {
				logger.Debug("call does not match clinic signature",
					zap.String("signature", signature), zap.Error(err))
			}
			return inference.NoValues
		}
		return fn(Call{Context: ctx, Arguments: args, Values: values})
	}, nil
}

// MustRepack is Repack for signatures known to be valid.
func MustRepack(name, signature string, fn Func, logger *zap.Logger) Native {
	native, err := Repack(name, signature, fn, logger)
	if err != nil {
		panic(err)
	}
	return native
}
