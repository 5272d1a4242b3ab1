package reconcile

import (
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/net/html"
)

// attrs are the live attributes restored from their data- counterparts.
var attrs = []string{"href", "src", "type"}

// Reconciler makes the tagged elements of a document match a consent decision.
type Reconciler struct {
	logger *zap.Logger
}

// New creates a reconciler. A nil logger disables logging.
func New(logger *zap.Logger) *Reconciler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Reconciler{logger: logger}
}

// Reconcile plans and applies the changes for one service.
func (r *Reconciler) Reconcile(doc *Document, service string, consent bool) (Summary, error) {
	return r.Apply(r.Plan(doc, service, consent))
}

// Plan inspects the elements tagged for a service and decides what each one
// needs. It does not mutate the document.
func (r *Reconciler) Plan(doc *Document, service string, consent bool) []Action {
	if doc == nil {
		return nil
	}

	elements := doc.Elements(service)
	actions := make([]Action, 0, len(elements))
	for _, n := range elements {
		kind := Classify(n)
		action := Action{
			Service: service,
			Tag:     n.Data,
			Kind:    kind,
			Consent: consent,
			node:    n,
		}

		switch kind {
		case KindPlaceholder:
			action.Type = planPlaceholder(n, consent)
		case KindFrame:
			if frameSettled(n, consent) {
				action.Type = ActionSkip
			} else {
				action.Type = ActionReplace
			}
		case KindExecutable:
			if executableSettled(n, consent) {
				action.Type = ActionSkip
			} else {
				action.Type = ActionReplace
			}
		default:
			if inPlaceSettled(n, consent) {
				action.Type = ActionSkip
			} else {
				action.Type = ActionMutate
			}
		}

		if action.Type == ActionSkip {
			action.Reason = "already in target state"
		} else if action.Type == ActionReplace && n.Parent == nil {
			action.Type = ActionSkip
			action.Reason = "detached"
		}
		actions = append(actions, action)
	}
	return actions
}

// Apply executes planned actions in order.
func (r *Reconciler) Apply(actions []Action) (Summary, error) {
	var summary Summary
	for _, a := range actions {
		switch a.Type {
		case ActionSkip:
			r.logger.Debug("Skipping element",
				zap.String("service", a.Service),
				zap.String("tag", a.Tag),
				zap.Stringer("kind", a.Kind),
				zap.String("reason", a.Reason),
			)
			summary.Skipped++
		case ActionShow, ActionHide:
			togglePlaceholder(a.node, a.Consent)
			summary.Toggled++
		case ActionReplace:
			var err error
			if a.Kind == KindFrame {
				err = replace(a.node, func(n *html.Node) { rebuildFrame(a.node, n, a.Consent) })
			} else {
				err = replace(a.node, func(n *html.Node) { rebuildExecutable(n, a.Consent) })
			}
			if err != nil {
				return summary, fmt.Errorf("failed to replace %s for service %s: %w", a.Tag, a.Service, err)
			}
			summary.Replaced++
		case ActionMutate:
			mutateInPlace(a.node, a.Consent)
			summary.Mutated++
		}
	}
	return summary, nil
}

func planPlaceholder(n *html.Node, consent bool) ActionType {
	if consent {
		if display(n) == "none" {
			return ActionSkip
		}
		return ActionHide
	}
	if display(n) == placeholderDisplay(n) {
		return ActionSkip
	}
	return ActionShow
}

func placeholderDisplay(n *html.Node) string {
	if v, _ := attr(n, "data-original-display"); v != "" {
		return v
	}
	return "block"
}

func togglePlaceholder(n *html.Node, consent bool) {
	if consent {
		if _, ok := attr(n, "data-original-display"); !ok {
			if d := display(n); d != "" && d != "none" {
				setAttr(n, "data-original-display", d)
			}
		}
		setDisplay(n, "none")
		return
	}
	setDisplay(n, placeholderDisplay(n))
}

// replace swaps n for a rebuilt copy. Scripts and iframes only load when
// inserted, so changing attributes on the existing node is not enough.
func replace(n *html.Node, rebuild func(*html.Node)) error {
	if n.Parent == nil {
		return ErrNoParent
	}
	fresh := cloneNode(n)
	rebuild(fresh)
	n.Parent.InsertBefore(fresh, n)
	n.Parent.RemoveChild(n)
	return nil
}

func frameSettled(n *html.Node, consent bool) bool {
	src := attrOr(n, "src", "")
	_, modified := attr(n, "data-modified-by-klaro")
	neutralized := src == "" && display(n) == "none" && modified

	if !consent {
		return neutralized
	}
	if dataSrc, ok := attr(n, "data-src"); ok {
		return src == dataSrc
	}
	return !neutralized
}

func rebuildFrame(old, n *html.Node, consent bool) {
	if consent {
		if v, ok := attr(old, "data-original-display"); ok {
			setDisplay(n, v)
		}
		if v, ok := attr(old, "data-src"); ok {
			setAttr(n, "src", v)
		}
		return
	}

	setAttr(n, "src", "")
	_, modified := attr(old, "data-modified-by-klaro")
	_, hasOriginal := attr(old, "data-original-display")
	if !modified || !hasOriginal {
		setAttr(n, "data-original-display", display(old))
		setAttr(n, "data-modified-by-klaro", "yes")
	}
	setDisplay(n, "none")
}

func executableSettled(n *html.Node, consent bool) bool {
	current := attrOr(n, "type", "")
	if !consent {
		return current == "text/plain"
	}
	if current != attrOr(n, "data-type", "") {
		return false
	}
	if v, ok := attr(n, "data-src"); ok && attrOr(n, "src", "") != v {
		return false
	}
	if v, ok := attr(n, "data-href"); ok && attrOr(n, "href", "") != v {
		return false
	}
	return true
}

func rebuildExecutable(n *html.Node, consent bool) {
	if !consent {
		setAttr(n, "type", "text/plain")
		return
	}
	if t := attrOr(n, "data-type", ""); t != "" {
		setAttr(n, "type", t)
	} else {
		removeAttr(n, "type")
	}
	if v, ok := attr(n, "data-src"); ok {
		setAttr(n, "src", v)
	}
	if v, ok := attr(n, "data-href"); ok {
		setAttr(n, "href", v)
	}
}

func inPlaceSettled(n *html.Node, consent bool) bool {
	if consent {
		for _, a := range attrs {
			if v, ok := attr(n, "data-"+a); ok && attrOr(n, a, "") != v {
				return false
			}
		}
		if v, ok := attr(n, "data-title"); ok && attrOr(n, "title", "") != v {
			return false
		}
		return display(n) == attrOr(n, "data-original-display", "")
	}

	if display(n) != "none" {
		return false
	}
	for _, a := range attrs {
		if _, ok := attr(n, "data-"+a); !ok {
			continue
		}
		current, has := attr(n, a)
		original, stashed := attr(n, "data-original-"+a)
		if stashed && current != original {
			return false
		}
		if !stashed && has {
			return false
		}
	}
	if _, ok := attr(n, "data-title"); ok {
		if _, has := attr(n, "title"); has {
			return false
		}
	}
	return true
}

func mutateInPlace(n *html.Node, consent bool) {
	if consent {
		for _, a := range attrs {
			v, ok := attr(n, "data-"+a)
			if !ok {
				continue
			}
			if _, stashed := attr(n, "data-original-"+a); !stashed {
				if current, has := attr(n, a); has {
					setAttr(n, "data-original-"+a, current)
				}
			}
			setAttr(n, a, v)
		}
		if v, ok := attr(n, "data-title"); ok {
			setAttr(n, "title", v)
		}
		setDisplay(n, attrOr(n, "data-original-display", ""))
		return
	}

	if _, ok := attr(n, "data-title"); ok {
		removeAttr(n, "title")
	}
	if _, ok := attr(n, "data-original-display"); !ok {
		setAttr(n, "data-original-display", display(n))
	}
	setDisplay(n, "none")
	for _, a := range attrs {
		if _, ok := attr(n, "data-"+a); !ok {
			continue
		}
		if original, ok := attr(n, "data-original-"+a); ok {
			setAttr(n, a, original)
		} else {
			removeAttr(n, a)
		}
	}
}
