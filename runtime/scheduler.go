package runtime

// Step advances co by exactly one frame-stack transition, per spec.md
// §4.4's pure transition table:
//
//	AFTER_PUSHED : run after_pushed; on success set SELECT_CHILD, else ON_POPPING
//	SELECT_CHILD : run select_child; if child: push new frame (next_step=AFTER_PUSHED); else ON_POPPING
//	ON_POPPING   : run on_popping; if true pop frame, else set RERUN
//	RERUN        : run rerun; set SELECT_CHILD
//
// It returns true if co just parked (its frame stack is non-empty but it
// needs to WAIT for an external event before it can continue — e.g. a
// hibernating SYNC request or a registered observer with no message yet),
// false if the caller should call Step again immediately.
func Step(co *Coroutine) bool {
	f := co.Current()
	if f == nil {
		return true
	}

	switch f.NextStep {
	case AfterPushed:
		stepAfterPushed(co, f)
	case SelectChild:
		stepSelectChild(co, f)
	case OnPopping:
		stepOnPopping(co, f)
	case Rerun:
		stepRerun(co, f)
	}

	drainException(co)

	return co.State == Wait
}

// drainException moves a just-raised leaf error into the coroutine's
// exception slot, per spec.md §7's "at every scheduler step boundary, if
// the slot is non-zero, it is moved into the current coroutine's
// exception slot, the slot is cleared, and the step continues" — here
// modeled directly on the exception slot rather than a separate
// thread-local, since this package has no hidden global state to move
// it out of.
func drainException(co *Coroutine) {
	// RaiseException already writes straight into co.Exception; nothing
	// further to move at the step boundary in this implementation.
	_ = co
}

func stepAfterPushed(co *Coroutine, f *Frame) {
	if f.Preemptor != nil {
		pre := f.Preemptor
		f.Preemptor = nil
		f.NextStep = pre(f)
		return
	}
	ctxt, ok, err := f.Ops.AfterPushed(co, f)
	f.Ctxt = ctxt
	if err != nil {
		co.RaiseException(err, f)
		f.NextStep = OnPopping
		return
	}
	if ok {
		f.NextStep = SelectChild
	} else {
		f.NextStep = OnPopping
	}
}

func stepSelectChild(co *Coroutine, f *Frame) {
	child, ok, err := f.Ops.SelectChild(co, f)
	if err != nil {
		co.RaiseException(err, f)
		f.NextStep = OnPopping
		return
	}
	if !ok || child == nil {
		f.NextStep = OnPopping
		return
	}
	childOps := f.Ops
	if co.OpsFor != nil {
		if resolved, found := co.OpsFor(child.Tag); found {
			childOps = resolved
		}
	}
	childFrame := NewFrame(Normal, childOps)
	childFrame.Pos = child
	childFrame.Scope = child
	childFrame.EDOMElement = f.EDOMElement
	co.Push(childFrame)
}

func stepOnPopping(co *Coroutine, f *Frame) {
	pop, err := f.Ops.OnPopping(co, f)
	if err != nil {
		co.RaiseException(err, f)
		pop = true
	}
	if pop {
		co.Pop()
		return
	}
	f.NextStep = Rerun
}

func stepRerun(co *Coroutine, f *Frame) {
	_, err := f.Ops.Rerun(co, f)
	if err != nil {
		co.RaiseException(err, f)
	}
	f.NextStep = SelectChild
}

// parkOn transitions co to WAIT until an external event calls Heap.Wake.
// Nothing in this module calls it: a coroutine with live observers is
// parked by the heap once its frame stack is empty, and <load> keeps its
// frame on the stack until the request lands.
func parkOn(co *Coroutine) {
	co.State = Wait
}
