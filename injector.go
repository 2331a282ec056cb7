package staged

import "context"

// ProduceOptions configures Injector.Plan / Injector.Produce /
// Injector.ProduceAsync (spec §6).
type ProduceOptions struct {
	// Activation is the base Activation used by the Planner. The zero
	// value is EmptyActivation.
	Activation Activation

	// AutoRoots, when true, makes every Key the module declares a
	// binding for a root.
	AutoRoots bool

	// Parent enables hierarchical lookup and Subcontext chaining.
	Parent Locator

	// Logger receives Planner axis tracing and Producer's weak-element
	// notices. A nil Logger discards everything.
	Logger Logger
}

func (o ProduceOptions) logger() Logger {
	if o.Logger == nil {
		return discardLogger{}
	}
	return o.Logger
}

func (o ProduceOptions) planOptions() PlanOptions {
	return PlanOptions{Activation: o.Activation, AutoRoots: o.AutoRoots, Parent: o.Parent}
}

// Injector is the thin orchestration facade of spec §4.6: it holds no
// state beyond its dependency on Planner and Producer, and exists only to
// give callers single-call convenience over Plan/Produce/ProduceAsync.
type Injector struct{}

// NewInjector builds an Injector.
func NewInjector() *Injector { return &Injector{} }

// Plan delegates to Planner.Plan.
func (in *Injector) Plan(module Module, roots []Key, opts ProduceOptions) (Plan, error) {
	return NewPlanner(opts.logger()).Plan(module, roots, opts.planOptions())
}

// Produce plans module against roots and runs the Producer in the mode the
// resulting Plan calls for: synchronous unless the Plan references an
// async Functoid, in which case ProduceAsync (with a background Context)
// runs instead (spec §4.6).
func (in *Injector) Produce(module Module, roots []Key, opts ProduceOptions) (Locator, error) {
	return in.produce(context.Background(), module, roots, opts)
}

// ProduceAsync is Produce but threads ctx through to the asynchronous
// Producer so callers can cancel outstanding work at a suspension point
// (spec §5 "Cancellation/timeout").
func (in *Injector) ProduceAsync(ctx context.Context, module Module, roots []Key, opts ProduceOptions) (Locator, error) {
	return in.produce(ctx, module, roots, opts)
}

func (in *Injector) produce(ctx context.Context, module Module, roots []Key, opts ProduceOptions) (Locator, error) {
	plan, err := in.Plan(module, roots, opts)
	if err != nil {
		return nil, err
	}
	producer := NewProducer(opts.logger())
	if plan.HasAsync() {
		return producer.ProduceAsync(ctx, plan, opts.Parent)
	}
	return producer.Produce(plan, opts.Parent)
}

// ProduceOne is a convenience variant for a single root Key, returning its
// produced value directly.
func (in *Injector) ProduceOne(module Module, root Key, opts ProduceOptions) (any, error) {
	loc, err := in.Produce(module, []Key{root}, opts)
	if err != nil {
		return nil, err
	}
	return loc.Get(root)
}

// ProduceType is a convenience variant for an untagged nominal root.
func (in *Injector) ProduceType(module Module, typeName string, opts ProduceOptions) (any, error) {
	return in.ProduceOne(module, Of(Nominal(typeName)), opts)
}

// ProduceNamed is a convenience variant for a string-named nominal root.
func (in *Injector) ProduceNamed(module Module, typeName, id string, opts ProduceOptions) (any, error) {
	return in.ProduceOne(module, Named(Nominal(typeName), id), opts)
}
