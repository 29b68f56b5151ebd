package script

import (
	"strings"
)

// BoundaryMarker tags script that has already been wrapped by Wrap.
const BoundaryMarker = "/* pagegate:error-boundary */"

// ErrorPlaceholderID is the id of the element inserted when a wrapped script throws.
const ErrorPlaceholderID = "pagegate-script-error"

const boundaryHead = BoundaryMarker + `
(function () {
  'use strict';
  var safeQuery = function (selector) {
    try { return document.querySelector(selector); } catch (e) { return null; }
  };
  var safeQueryAll = function (selector) {
    try { return Array.prototype.slice.call(document.querySelectorAll(selector)); } catch (e) { return []; }
  };
  var safeById = function (id) {
    try { return document.getElementById(id); } catch (e) { return null; }
  };
  try {
`

const boundaryTail = `
  } catch (err) {
    console.error('[pagegate] script error:', err);
    var showError = function () {
      if (!document.body || document.getElementById('` + ErrorPlaceholderID + `')) { return; }
      var box = document.createElement('div');
      box.id = '` + ErrorPlaceholderID + `';
      box.setAttribute('role', 'alert');
      box.style.cssText = 'padding:8px 12px;margin:0;background:#fef2f2;color:#991b1b;font:14px sans-serif;border-bottom:1px solid #fecaca;';
      box.textContent = 'Some interactive features on this page failed to load.';
      document.body.insertBefore(box, document.body.firstChild);
    };
    if (document.readyState === 'loading') {
      document.addEventListener('DOMContentLoaded', showError);
    } else {
      showError();
    }
  }
})();
`

// Wrap returns script inside a strict-mode IIFE that provides null-safe
// lookup helpers and turns a thrown exception into a visible placeholder.
// Already wrapped input is returned unchanged; empty input yields "".
func Wrap(script string) string {
	if strings.TrimSpace(script) == "" {
		return ""
	}
	if IsWrapped(script) {
		return script
	}
	return boundaryHead + script + boundaryTail
}

// IsWrapped reports whether script is exactly a Wrap result: the marker
// alone is not enough since untrusted input can carry it.
func IsWrapped(script string) bool {
	t := strings.TrimSpace(script)
	return strings.HasPrefix(t, boundaryHead) && strings.HasSuffix(t, strings.TrimSpace(boundaryTail))
}
