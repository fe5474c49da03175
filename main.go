package main

import "github.com/TriThongVoSi/SE104-AgencyManagementSystem-sub002/cmd"

func main() {
	cmd.Execute()
}
