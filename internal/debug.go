package internal

import (
	"fmt"
	"log"
	"os"
	"os/user"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/earthboundkid/versioninfo/v2"
)

func ShowVersion() {
	log.Printf("Version: %s\n", versioninfo.Short())
}

var sensitiveRegex = regexp.MustCompile(`(?i)(PASSWORD|API_KEY|ACCESS_KEY|SECRET|TOKEN)`)

// EnvironmentVars logs the variables whose names start with prefix, masking
// anything that looks like a credential. An empty prefix logs everything.
func EnvironmentVars(prefix string) {
	log.Println("Environment variables")
	for _, line := range environLines(os.Environ(), prefix) {
		log.Println(line)
	}
}

func environLines(environ []string, prefix string) []string {
	entries := make([][]string, 0, len(environ))
	for _, entry := range environ {
		kv := strings.SplitN(entry, "=", 2)
		if len(kv) != 2 || !strings.HasPrefix(kv[0], prefix) {
			continue
		}
		entries = append(entries, kv)
	}
	sort.Slice(entries, func(i, j int) bool {
		return entries[i][0] < entries[j][0]
	})

	lines := make([]string, len(entries))
	for i, kv := range entries {
		if sensitiveRegex.MatchString(kv[0]) {
			lines[i] = fmt.Sprintf("  %s: ********", kv[0])
		} else {
			lines[i] = fmt.Sprintf("  %s: %s", kv[0], kv[1])
		}
	}
	return lines
}

func UserInfo() {
	log.Printf("PID: %d", os.Getpid())
	currentUser, err := user.Current()
	if err != nil {
		log.Printf("Error getting current user: %v", err)
	} else {
		log.Printf("User: uid=%s(%s) gid=%s", currentUser.Uid, currentUser.Username, currentUser.Gid)
	}
	groups, err := os.Getgroups()
	if err != nil {
		log.Printf("Error getting groups: %v", err)
		return
	}
	groupNames := make([]string, 0, len(groups))
	for _, gid := range groups {
		group, err := user.LookupGroupId(strconv.Itoa(gid))
		if err != nil {
			groupNames = append(groupNames, strconv.Itoa(gid))
		} else {
			groupNames = append(groupNames, fmt.Sprintf("%s(%s)", group.Name, group.Gid))
		}
	}
	log.Printf("Groups: %v", groupNames)
}
