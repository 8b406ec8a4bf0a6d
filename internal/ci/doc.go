// Package ci inspects GitHub Actions checks of a pull request through the gh
// CLI and classifies their failures.
//
// Every query degrades to an empty result when gh is missing, not
// authenticated or returns malformed JSON.
package ci
