// Package generic implements a providers.Source for HTML novel sites. The
// chapter body is the first element matching a configurable container
// selector; its paragraphs and images become content nodes in document order.
package generic
