// Command heapctl replays allocation traces against the heapkit allocator.
package main

func main() {
	execute()
}
