// Package reconcile makes an HTML document match a set of consent decisions.
//
// Elements belong to a service when their data-name attribute equals the
// service name. The reconciler never looks at any other element.
//
// # Element Kinds
//
// Every tagged element falls into one of four kinds, each with its own
// transition rules:
//
//  1. Placeholder (data-type="placeholder"): hidden on consent, shown again on
//     withdrawal using the remembered data-original-display (or "block").
//
//  2. Frame (iframe): replaced by a rebuilt copy. Consent restores src from
//     data-src; withdrawal empties src, hides the frame and marks it with
//     data-modified-by-klaro the first time.
//
//  3. Executable (script, link): replaced by a rebuilt copy. Consent restores
//     type, src and href from data-type, data-src and data-href; withdrawal
//     sets type="text/plain".
//
//  4. In place (everything else, e.g. img): attributes are swapped on the
//     existing node and the originals are stashed in data-original-* attributes.
//
// Frames and executables are replaced rather than mutated because a browser
// only fetches and runs them when the node is inserted.
//
// # Plan and Apply
//
// Plan inspects the document and returns one Action per tagged element
// without touching it. Elements already in the target state get ActionSkip,
// so repeated reconciliation does not churn the document. Apply executes a
// plan and returns a Summary.
//
// # Usage Example
//
//	doc, err := reconcile.ParseString(page)
//	r := reconcile.New(logger)
//
//	// Preview
//	actions := r.Plan(doc, "analytics", true)
//
//	// Execute
//	summary, err := r.Apply(actions)
//	fmt.Println(doc.String())
package reconcile
