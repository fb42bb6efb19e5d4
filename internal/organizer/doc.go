// Package organizer installs converted media into the output directory
// under the planned SEO filename.
//
// It moves the staged conversion output (and any poster frame) out of
// staging, handles files that appeared at the target path after
// planning by renaming alongside and flagging the item for review, and
// records the installed paths on the queue item. Progress updates and
// error wrapping follow the same conventions as other stages so the
// workflow manager can react uniformly.
package organizer
