// Package pipeline drives card recognition over whole scenes.
//
// A Pipeline extracts card candidates from a scene, cuts two corner regions
// out of every canonical card image and labels each region with the rank and
// suit matchers. The primary region is the top-left 70x150 block of the
// canonical image. The secondary region is the 70x150 block ending one pixel
// short of the bottom-right corner, rotated by 180 degrees so its glyphs read
// the same way up as the primary ones. Rank and suit are chosen
// independently: the primary result wins only with a strictly higher score.
//
// A Runner applies a Recognizer to every file of a directory, draws the
// results onto the scene and saves the annotated copy under the same name in
// an output directory.
package pipeline
