package broadcast

import "fmt"

// ChannelTasks is the global channel carrying task lifecycle events for
// coarse-grained consumers such as list views.
const ChannelTasks = "tasks"

// Scoped channel names are derived from entity identity so that any
// component can compute the channel it needs without a directory lookup.

func TaskChannel(taskID string) string {
	return fmt.Sprintf("task-%s", taskID)
}

func ProjectChannel(projectID string) string {
	return fmt.Sprintf("project-%s", projectID)
}

func PrivateUserChannel(userID string) string {
	return fmt.Sprintf("private-user-%s", userID)
}
