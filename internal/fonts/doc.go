// Package fonts enumerates the font families installed on the host so the
// editor can offer them for typesetting.
//
// Several sources are tried in order (fontconfig, the Windows registry, a
// direct scan of the system font directories) and a configured fallback list
// is served when none of them yields anything.
package fonts
