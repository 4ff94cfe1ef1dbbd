// Package export writes lens runs to files outside the terminal.
//
// PNG figures are drawn with gonum/plot: [RenderPNG] produces the
// side-by-side source and lensed panels, [RenderFieldPNG] a single panel.
// [FieldToSVG], [ProfileToSVG] and [CanvasToSVG] emit standalone SVG, and
// [ExportJSON] serializes parameters, metrics and both fields.
package export
