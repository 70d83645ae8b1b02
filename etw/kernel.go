// Copyright The LibTrace Authors
// SPDX-License-Identifier: Apache-2.0

package etw // import "github.com/fdoray/libtrace/etw"

import (
	"errors"

	"github.com/google/uuid"

	"github.com/fdoray/libtrace/event"
)

// ErrUnknownEvent is returned when a (provider, opcode, version) triple is
// not in the dispatch table.
var ErrUnknownEvent = errors.New("unknown kernel event")

// Kernel provider identities.
var (
	EventTraceEventProviderID = uuid.MustParse("68FDD900-4A3E-11D1-84F4-0000F80464E3")
	ImageProviderID           = uuid.MustParse("2CB15D1D-5FC1-11D2-ABE1-00A0C911F518")
	PerfInfoProviderID        = uuid.MustParse("CE1DBFB4-137E-4DA6-87B0-3F59AA102CBC")
	ProcessProviderID         = uuid.MustParse("3D6FA8D0-FE05-11D0-9DDA-00C04FD7BA7C")
	ThreadProviderID          = uuid.MustParse("3D6FA8D1-FE05-11D0-9DDA-00C04FD7BA7C")
	TcplpProviderID           = uuid.MustParse("9A280AC0-C8E0-11D1-84E2-00C04FB998A2")
	RegistryProviderID        = uuid.MustParse("AE53722E-C863-11D2-8659-00C04FA321A1")
	FileIOProviderID          = uuid.MustParse("90CBDC39-4A3E-11D1-84F4-0000F80464E3")
	DiskIOProviderID          = uuid.MustParse("3D6FA8D4-FE05-11D0-9DDA-00C04FD7BA7C")
	StackWalkProviderID       = uuid.MustParse("DEF2FE46-7BD6-4B80-BD94-F57FE20D0CE3")
	PageFaultProviderID       = uuid.MustParse("3D6FA8D3-FE05-11D0-9DDA-00C04FD7BA7C")
)

// providerCategories maps a provider identity to its category name.
var providerCategories = map[uuid.UUID]string{
	EventTraceEventProviderID: "EventTraceEvent",
	ImageProviderID:           "Image",
	PerfInfoProviderID:        "PerfInfo",
	ProcessProviderID:         "Process",
	ThreadProviderID:          "Thread",
	TcplpProviderID:           "Tcplp",
	RegistryProviderID:        "Registry",
	FileIOProviderID:          "FileIO",
	DiskIOProviderID:          "DiskIO",
	StackWalkProviderID:       "StackWalk",
	PageFaultProviderID:       "PageFault",
}

// decodeFunc consumes a raw payload cursor and fills the fields struct.
type decodeFunc func(d *Decoder, is64Bit bool, s *event.Struct) error

type opKey struct {
	provider uuid.UUID
	opcode   uint8
}

type opSpec struct {
	operation string
	versions  map[uint8]decodeFunc
}

var kernelOps = map[opKey]opSpec{}

func register(provider uuid.UUID, opcode uint8, operation string,
	versions map[uint8]decodeFunc) {
	kernelOps[opKey{provider, opcode}] = opSpec{operation, versions}
}

// DecodeKernelPayload maps a (provider, opcode, version, bitness) tuple and
// a raw payload to a (category, operation, fields) triple. A tuple outside
// the dispatch table yields ErrUnknownEvent; a short payload yields
// ErrTruncated. Both mean "drop this event and continue".
func DecodeKernelPayload(provider uuid.UUID, opcode, version uint8,
	is64Bit bool, payload []byte) (category, operation string,
	fields *event.Struct, err error) {
	category, ok := providerCategories[provider]
	if !ok {
		return "", "", nil, ErrUnknownEvent
	}
	spec, ok := kernelOps[opKey{provider, opcode}]
	if !ok {
		return "", "", nil, ErrUnknownEvent
	}
	decode, ok := spec.versions[version]
	if !ok {
		return "", "", nil, ErrUnknownEvent
	}

	fields = event.NewStruct()
	if err := decode(NewDecoder(payload), is64Bit, fields); err != nil {
		return "", "", nil, err
	}
	return category, spec.operation, fields, nil
}

func init() {
	registerEventTraceEvents()
	registerImageEvents()
	registerPerfInfoEvents()
	registerProcessEvents()
	registerThreadEvents()
	registerTcplpEvents()
	registerRegistryEvents()
	registerFileIOEvents()
	registerDiskIOEvents()
	registerStackWalkEvents()
	registerPageFaultEvents()
}

func registerEventTraceEvents() {
	header := layout(
		u32("BufferSize"),
		u32("Version"),
		u32("ProviderVersion"),
		u32("NumberOfProcessors"),
		u64("EndTime"),
		u32("TimerResolution"),
		u32("MaxFileSize"),
		u32("LogFileMode"),
		u32("BuffersWritten"),
		u32("StartBuffers"),
		u32("PointerSize"),
		u32("EventsLost"),
		u32("CPUSpeed"),
		ptr("LoggerName"),
		ptr("LogFileName"),
		timeZoneInformation("TimeZoneInformation"),
		u32("Padding"),
		u64("BootTime"),
		u64("PerfFreq"),
		u64("StartTime"),
		u32("ReservedFlags"),
		u32("BuffersLost"),
		wstr("SessionNameString"),
		wstr("LogFileNameString"),
	)
	register(EventTraceEventProviderID, 0, "Header",
		map[uint8]decodeFunc{2: header})

	extension := layout(
		u32("GroupMask1"),
		u32("GroupMask2"),
		u32("GroupMask3"),
		u32("GroupMask4"),
		u32("GroupMask5"),
		u32("GroupMask6"),
		u32("GroupMask7"),
		u32("GroupMask8"),
		u32("KernelEventVersion"),
	)
	register(EventTraceEventProviderID, 5, "Extension",
		map[uint8]decodeFunc{2: extension})
}

func registerImageEvents() {
	v0 := layout(
		ptr("BaseAddress"),
		u32("ModuleSize"),
		wstr("ImageFileName"),
	)
	v1 := layout(
		ptr("BaseAddress"),
		u32("ModuleSize"),
		u32("ProcessId"),
		wstr("ImageFileName"),
	)
	v2 := layout(
		ptr("BaseAddress"),
		ptr("ModuleSize"),
		u32("ProcessId"),
		u32("ImageCheckSum"),
		u32("TimeDateStamp"),
		u32("Reserved0"),
		ptr("DefaultBase"),
		u32("Reserved1"),
		u32("Reserved2"),
		u32("Reserved3"),
		u32("Reserved4"),
		wstr("ImageFileName"),
	)
	v3 := layout(
		ptr("BaseAddress"),
		ptr("ModuleSize"),
		u32("ProcessId"),
		u32("ImageCheckSum"),
		u32("TimeDateStamp"),
		u8("SignatureLevel"),
		u8("SignatureType"),
		u16("Reserved0"),
		ptr("DefaultBase"),
		u32("Reserved1"),
		u32("Reserved2"),
		u32("Reserved3"),
		u32("Reserved4"),
		wstr("ImageFileName"),
	)

	register(ImageProviderID, 2, "Unload",
		map[uint8]decodeFunc{2: v2, 3: v3})
	register(ImageProviderID, 3, "DCStart",
		map[uint8]decodeFunc{0: v0, 1: v1, 2: v2, 3: v3})
	register(ImageProviderID, 4, "DCEnd",
		map[uint8]decodeFunc{2: v2, 3: v3})
	register(ImageProviderID, 10, "Load",
		map[uint8]decodeFunc{0: v0, 1: v1, 2: v2, 3: v3})
	register(ImageProviderID, 33, "KernelBase",
		map[uint8]decodeFunc{2: layout(ptr("BaseAddress"))})
}

func registerPerfInfoEvents() {
	sampleProf := layout(
		ptr("InstructionPointer"),
		u32("ThreadId"),
		u16("Count"),
		u16("Reserved"),
	)
	register(PerfInfoProviderID, 46, "SampleProf",
		map[uint8]decodeFunc{2: sampleProf})

	isrMSI := layout(
		u64("InitialTime"),
		ptr("Routine"),
		u8("ReturnValue"),
		u16("Vector"),
		u8("Reserved"),
		u32("MessageNumber"),
	)
	register(PerfInfoProviderID, 50, "ISR-MSI",
		map[uint8]decodeFunc{2: isrMSI})

	register(PerfInfoProviderID, 51, "SysClEnter",
		map[uint8]decodeFunc{2: layout(ptr("SysCallAddress"))})
	register(PerfInfoProviderID, 52, "SysClExit",
		map[uint8]decodeFunc{2: layout(u32("SysCallNtStatus"))})

	register(PerfInfoProviderID, 58, "DebuggerEnabled",
		map[uint8]decodeFunc{2: layout()})

	isr := layout(
		u64("InitialTime"),
		ptr("Routine"),
		u8("ReturnValue"),
		u16("Vector"),
		u8("Reserved"),
	)
	register(PerfInfoProviderID, 67, "ISR",
		map[uint8]decodeFunc{2: isr})

	dpc := layout(
		u64("InitialTime"),
		ptr("Routine"),
	)
	register(PerfInfoProviderID, 66, "ThreadedDPC",
		map[uint8]decodeFunc{2: dpc})
	register(PerfInfoProviderID, 68, "DPC",
		map[uint8]decodeFunc{2: dpc})
	register(PerfInfoProviderID, 69, "TimerDPC",
		map[uint8]decodeFunc{2: dpc})

	collectionV2 := layout(
		u32("Source"),
		u32("NewInterval"),
		u32("OldInterval"),
	)
	collectionV3 := layout(
		u32("Source"),
		u32("NewInterval"),
		u32("OldInterval"),
		wstr("SourceName"),
	)
	register(PerfInfoProviderID, 73, "CollectionStart",
		map[uint8]decodeFunc{2: collectionV2, 3: collectionV3})
	register(PerfInfoProviderID, 74, "CollectionEnd",
		map[uint8]decodeFunc{2: collectionV2, 3: collectionV3})

	spinLockConfig := layout(
		u32("SpinLockSpinThreshold"),
		u32("SpinLockContentionSampleRate"),
		u32("SpinLockAcquireSampleRate"),
		u32("SpinLockHoldThreshold"),
	)
	// Opcodes 75/76 report the spin lock collection configuration; they
	// share the CollectionStart/CollectionEnd operation names.
	register(PerfInfoProviderID, 75, "CollectionStart",
		map[uint8]decodeFunc{3: spinLockConfig})
	register(PerfInfoProviderID, 76, "CollectionEnd",
		map[uint8]decodeFunc{3: spinLockConfig})
}

func registerProcessEvents() {
	v1 := layout(
		ptr("PageDirectoryBase"),
		u32("ProcessId"),
		u32("ParentId"),
		u32("SessionId"),
		i32("ExitStatus"),
		sid("UserSID"),
		nstr("ImageFileName"),
	)
	v2 := layout(
		ptr("UniqueProcessKey"),
		u32("ProcessId"),
		u32("ParentId"),
		u32("SessionId"),
		i32("ExitStatus"),
		sid("UserSID"),
		nstr("ImageFileName"),
		wstr("CommandLine"),
	)
	v3 := layout(
		ptr("UniqueProcessKey"),
		u32("ProcessId"),
		u32("ParentId"),
		u32("SessionId"),
		i32("ExitStatus"),
		ptr("DirectoryTableBase"),
		sid("UserSID"),
		nstr("ImageFileName"),
		wstr("CommandLine"),
	)
	v4 := layout(
		ptr("UniqueProcessKey"),
		u32("ProcessId"),
		u32("ParentId"),
		u32("SessionId"),
		i32("ExitStatus"),
		ptr("DirectoryTableBase"),
		u32("Flags"),
		sid("UserSID"),
		nstr("ImageFileName"),
		wstr("CommandLine"),
		wstr("PackageFullName"),
		wstr("ApplicationId"),
	)
	v5 := layout(
		ptr("UniqueProcessKey"),
		u32("ProcessId"),
		u32("ParentId"),
		u32("SessionId"),
		i32("ExitStatus"),
		ptr("DirectoryTableBase"),
		u32("Flags"),
		sid("UserSID"),
		nstr("ImageFileName"),
		wstr("CommandLine"),
		wstr("PackageFullName"),
		wstr("ApplicationId"),
		u64("ExitTime"),
	)

	lifecycle := map[uint8]decodeFunc{1: v1, 2: v2, 3: v3, 4: v4}
	register(ProcessProviderID, 1, "Start", lifecycle)
	register(ProcessProviderID, 2, "End", lifecycle)
	register(ProcessProviderID, 3, "DCStart", lifecycle)
	register(ProcessProviderID, 4, "DCEnd", lifecycle)

	register(ProcessProviderID, 11, "Terminate",
		map[uint8]decodeFunc{2: layout(u32("ProcessId"))})

	perfCtr := layout(
		u32("ProcessId"),
		u32("PageFaultCount"),
		u32("HandleCount"),
		u32("Reserved"),
		ptr("PeakVirtualSize"),
		ptr("PeakWorkingSetSize"),
		ptr("PeakPagefileUsage"),
		ptr("QuotaPeakPagedPoolUsage"),
		ptr("QuotaPeakNonPagedPoolUsage"),
		ptr("VirtualSize"),
		ptr("WorkingSetSize"),
		ptr("PagefileUsage"),
		ptr("QuotaPagedPoolUsage"),
		ptr("QuotaNonPagedPoolUsage"),
		ptr("PrivatePageCount"),
	)
	register(ProcessProviderID, 32, "PerfCtr",
		map[uint8]decodeFunc{2: perfCtr})
	register(ProcessProviderID, 33, "PerfCtrRundown",
		map[uint8]decodeFunc{2: perfCtr})

	register(ProcessProviderID, 39, "Defunct",
		map[uint8]decodeFunc{2: v2, 3: v3, 5: v5})
}

func registerThreadEvents() {
	startV1 := layout(
		u32("ProcessId"),
		u32("TThreadId"),
		ptr("StackBase"),
		ptr("StackLimit"),
		ptr("UserStackBase"),
		ptr("UserStackLimit"),
		ptr("StartAddr"),
		ptr("Win32StartAddr"),
		i8("WaitMode"),
	)
	endV1 := layout(
		u32("ProcessId"),
		u32("TThreadId"),
	)
	v2 := layout(
		u32("ProcessId"),
		u32("TThreadId"),
		ptr("StackBase"),
		ptr("StackLimit"),
		ptr("UserStackBase"),
		ptr("UserStackLimit"),
		ptr("StartAddr"),
		ptr("Win32StartAddr"),
		ptr("TebBase"),
		u32("SubProcessTag"),
	)
	v3 := layout(
		u32("ProcessId"),
		u32("TThreadId"),
		ptr("StackBase"),
		ptr("StackLimit"),
		ptr("UserStackBase"),
		ptr("UserStackLimit"),
		ptr("Affinity"),
		ptr("Win32StartAddr"),
		ptr("TebBase"),
		u32("SubProcessTag"),
		u8("BasePriority"),
		u8("PagePriority"),
		u8("IoPriority"),
		u8("ThreadFlags"),
	)

	register(ThreadProviderID, 1, "Start",
		map[uint8]decodeFunc{1: startV1, 3: v3})
	register(ThreadProviderID, 2, "End",
		map[uint8]decodeFunc{1: endV1, 3: v3})
	register(ThreadProviderID, 3, "DCStart",
		map[uint8]decodeFunc{2: v2, 3: v3})
	register(ThreadProviderID, 4, "DCEnd",
		map[uint8]decodeFunc{2: v2, 3: v3})

	cswitch := layout(
		u32("NewThreadId"),
		u32("OldThreadId"),
		i8("NewThreadPriority"),
		i8("OldThreadPriority"),
		u8("PreviousCState"),
		i8("SpareByte"),
		i8("OldThreadWaitReason"),
		i8("OldThreadWaitMode"),
		i8("OldThreadState"),
		i8("OldThreadWaitIdealProcessor"),
		u32("NewThreadWaitTime"),
		u32("Reserved"),
	)
	register(ThreadProviderID, 36, "CSwitch",
		map[uint8]decodeFunc{2: cswitch})

	spinLock := layout(
		ptr("SpinLockAddress"),
		ptr("CallerAddress"),
		u64("AcquireTime"),
		u64("ReleaseTime"),
		u32("WaitTimeInCycles"),
		u32("SpinCount"),
		u32("ThreadId"),
		u32("InterruptCount"),
		u8("Irql"),
		u8("AcquireDepth"),
		u8("Flag"),
		u8Array("Reserved", 5),
	)
	register(ThreadProviderID, 41, "SpinLock",
		map[uint8]decodeFunc{2: spinLock})

	setPriority := layout(
		u32("ThreadId"),
		u8("OldPriority"),
		u8("NewPriority"),
		u16("Reserved"),
	)
	register(ThreadProviderID, 48, "SetPriority",
		map[uint8]decodeFunc{3: setPriority})
	register(ThreadProviderID, 49, "SetBasePriority",
		map[uint8]decodeFunc{3: setPriority})
	register(ThreadProviderID, 51, "SetPagePriority",
		map[uint8]decodeFunc{3: setPriority})
	register(ThreadProviderID, 52, "SetIoPriority",
		map[uint8]decodeFunc{3: setPriority})

	readyThread := layout(
		u32("TThreadId"),
		i8("AdjustReason"),
		i8("AdjustIncrement"),
		i8("Flag"),
		i8("Reserved"),
	)
	register(ThreadProviderID, 50, "ReadyThread",
		map[uint8]decodeFunc{2: readyThread})

	register(ThreadProviderID, 66, "AutoBoostSetFloor",
		map[uint8]decodeFunc{2: layout(
			ptr("Lock"),
			u32("ThreadId"),
			u8("NewCpuPriorityFloor"),
			u8("OldCpuPriority"),
			u8("IoPriorities"),
			u8("BoostFlags"),
		)})
	register(ThreadProviderID, 67, "AutoBoostClearFloor",
		map[uint8]decodeFunc{2: layout(
			ptr("LockAddress"),
			u32("ThreadId"),
			u16("BoostBitmap"),
			u16("Reserved"),
		)})
	register(ThreadProviderID, 68, "AutoBoostEntryExhaustion",
		map[uint8]decodeFunc{2: layout(
			ptr("LockAddress"),
			u32("ThreadId"),
		)})
}

func registerTcplpEvents() {
	send := layout(
		u32("PID"),
		u32("size"),
		u32("daddr"),
		u32("saddr"),
		u16("dport"),
		u16("sport"),
		u32("startime"),
		u32("endtime"),
		u32("seqnum"),
		ptr("connid"),
	)
	basic := layout(
		u32("PID"),
		u32("size"),
		u32("daddr"),
		u32("saddr"),
		u16("dport"),
		u16("sport"),
		u32("seqnum"),
		ptr("connid"),
	)
	connect := layout(
		u32("PID"),
		u32("size"),
		u32("daddr"),
		u32("saddr"),
		u16("dport"),
		u16("sport"),
		u16("mss"),
		u16("sackopt"),
		u16("tsopt"),
		u16("wsopt"),
		u32("rcvwin"),
		i16("rcvwinscale"),
		i16("sndwinscale"),
		u32("seqnum"),
		ptr("connid"),
	)

	register(TcplpProviderID, 10, "SendIPV4",
		map[uint8]decodeFunc{2: send})
	register(TcplpProviderID, 11, "RecvIPV4",
		map[uint8]decodeFunc{2: basic})
	register(TcplpProviderID, 12, "ConnectIPV4",
		map[uint8]decodeFunc{2: connect})
	register(TcplpProviderID, 13, "DisconnectIPV4",
		map[uint8]decodeFunc{2: basic})
	register(TcplpProviderID, 14, "RetransmitIPV4",
		map[uint8]decodeFunc{2: basic})
	register(TcplpProviderID, 18, "TCPCopyIPV4",
		map[uint8]decodeFunc{2: basic})
}

func registerRegistryEvents() {
	v1 := layout(
		u32("Status"),
		ptr("KeyHandle"),
		i64("ElapsedTime"),
		u32("Index"),
		wstr("KeyName"),
	)
	v2 := layout(
		i64("InitialTime"),
		u32("Status"),
		u32("Index"),
		ptr("KeyHandle"),
		wstr("KeyName"),
	)
	versions := map[uint8]decodeFunc{1: v1, 2: v2}

	typedOps := map[uint8]string{
		10: "Create",
		11: "Open",
		13: "Query",
		14: "SetValue",
		16: "QueryValue",
		17: "EnumerateKey",
		18: "EnumerateValueKey",
		19: "QueryMultipleValue",
		20: "SetInformation",
		21: "Flush",
		22: "KCBCreate",
		23: "KCBDelete",
		25: "KCBRundownEnd",
		27: "Close",
		28: "SetSecurity",
		29: "QuerySecurity",
	}
	for opcode, operation := range typedOps {
		register(RegistryProviderID, opcode, operation, versions)
	}

	register(RegistryProviderID, 34, "Counters",
		map[uint8]decodeFunc{2: layout(
			u64("Counter1"),
			u64("Counter2"),
			u64("Counter3"),
			u64("Counter4"),
			u64("Counter5"),
			u64("Counter6"),
			u64("Counter7"),
			u64("Counter8"),
			u64("Counter9"),
			u64("Counter10"),
			u64("Counter11"),
		)})
	register(RegistryProviderID, 35, "Config",
		map[uint8]decodeFunc{2: layout(u32("CurrentControlSet"))})
}

func registerFileIOEvents() {
	fileName := layout(
		ptr("FileObject"),
		wstr("FileName"),
	)
	register(FileIOProviderID, 32, "FileCreate",
		map[uint8]decodeFunc{2: fileName})
	register(FileIOProviderID, 35, "FileDelete",
		map[uint8]decodeFunc{2: fileName})
	register(FileIOProviderID, 36, "FileRundown",
		map[uint8]decodeFunc{2: fileName})

	register(FileIOProviderID, 64, "Create", map[uint8]decodeFunc{
		2: layout(
			ptr("IrpPtr"),
			ptr("TTID"),
			ptr("FileObject"),
			u32("CreateOptions"),
			u32("FileAttributes"),
			u32("ShareAccess"),
			wstr("OpenPath"),
		),
		3: layout(
			ptr("IrpPtr"),
			ptr("FileObject"),
			u32("TTID"),
			u32("CreateOptions"),
			u32("FileAttributes"),
			u32("ShareAccess"),
			wstr("OpenPath"),
		),
	})

	simple := map[uint8]decodeFunc{
		2: layout(
			ptr("IrpPtr"),
			ptr("TTID"),
			ptr("FileObject"),
			ptr("FileKey"),
		),
		3: layout(
			ptr("IrpPtr"),
			ptr("FileObject"),
			ptr("FileKey"),
			u32("TTID"),
		),
	}
	register(FileIOProviderID, 65, "Cleanup", simple)
	register(FileIOProviderID, 66, "Close", simple)
	register(FileIOProviderID, 73, "Flush", simple)

	readWrite := map[uint8]decodeFunc{
		2: layout(
			u64("Offset"),
			ptr("IrpPtr"),
			ptr("TTID"),
			ptr("FileObject"),
			ptr("FileKey"),
			u32("IoSize"),
			u32("IoFlags"),
		),
		3: layout(
			u64("Offset"),
			ptr("IrpPtr"),
			ptr("FileObject"),
			ptr("FileKey"),
			u32("TTID"),
			u32("IoSize"),
			u32("IoFlags"),
		),
	}
	register(FileIOProviderID, 67, "Read", readWrite)
	register(FileIOProviderID, 68, "Write", readWrite)

	info := map[uint8]decodeFunc{
		2: layout(
			ptr("IrpPtr"),
			ptr("TTID"),
			ptr("FileObject"),
			ptr("FileKey"),
			ptr("ExtraInfo"),
			u32("InfoClass"),
		),
		3: layout(
			ptr("IrpPtr"),
			ptr("FileObject"),
			ptr("FileKey"),
			ptr("ExtraInfo"),
			u32("TTID"),
			u32("InfoClass"),
		),
	}
	register(FileIOProviderID, 69, "SetInfo", info)
	register(FileIOProviderID, 70, "Delete", info)
	register(FileIOProviderID, 71, "Rename", info)
	register(FileIOProviderID, 74, "QueryInfo", info)
	register(FileIOProviderID, 75, "FSControl", info)

	dir := map[uint8]decodeFunc{
		2: layout(
			ptr("IrpPtr"),
			ptr("TTID"),
			ptr("FileObject"),
			ptr("FileKey"),
			u32("Length"),
			u32("InfoClass"),
			u32("FileIndex"),
			wstr("FileName"),
		),
		3: layout(
			ptr("IrpPtr"),
			ptr("FileObject"),
			ptr("FileKey"),
			u32("TTID"),
			u32("Length"),
			u32("InfoClass"),
			u32("FileIndex"),
			wstr("FileName"),
		),
	}
	register(FileIOProviderID, 72, "DirEnum", dir)
	register(FileIOProviderID, 77, "DirNotify", dir)

	operationEnd := layout(
		ptr("IrpPtr"),
		ptr("ExtraInfo"),
		u32("NtStatus"),
	)
	register(FileIOProviderID, 76, "OperationEnd",
		map[uint8]decodeFunc{2: operationEnd, 3: operationEnd})

	path := layout(
		ptr("IrpPtr"),
		ptr("FileObject"),
		ptr("FileKey"),
		ptr("ExtraInfo"),
		u32("TTID"),
		u32("InfoClass"),
		wstr("FileName"),
	)
	register(FileIOProviderID, 79, "DeletePath",
		map[uint8]decodeFunc{3: path})
	register(FileIOProviderID, 80, "RenamePath",
		map[uint8]decodeFunc{3: path})
}

func registerDiskIOEvents() {
	rwV2 := layout(
		u32("DiskNumber"),
		u32("IrpFlags"),
		u32("TransferSize"),
		u32("Reserved"),
		u64("ByteOffset"),
		ptr("FileObject"),
		ptr("Irp"),
		u64("HighResResponseTime"),
	)
	rwV3 := layout(
		u32("DiskNumber"),
		u32("IrpFlags"),
		u32("TransferSize"),
		u32("Reserved"),
		u64("ByteOffset"),
		ptr("FileObject"),
		ptr("Irp"),
		u64("HighResResponseTime"),
		u32("IssuingThreadId"),
	)
	register(DiskIOProviderID, 10, "Read",
		map[uint8]decodeFunc{2: rwV2, 3: rwV3})
	register(DiskIOProviderID, 11, "Write",
		map[uint8]decodeFunc{2: rwV2, 3: rwV3})

	initVersions := map[uint8]decodeFunc{
		2: layout(ptr("Irp")),
		3: layout(ptr("Irp"), u32("IssuingThreadId")),
	}
	register(DiskIOProviderID, 12, "ReadInit", initVersions)
	register(DiskIOProviderID, 13, "WriteInit", initVersions)
	register(DiskIOProviderID, 15, "FlushInit", initVersions)

	register(DiskIOProviderID, 14, "FlushBuffers", map[uint8]decodeFunc{
		2: layout(
			u32("DiskNumber"),
			u32("IrpFlags"),
			u64("HighResResponseTime"),
			ptr("Irp"),
		),
		3: layout(
			u32("DiskNumber"),
			u32("IrpFlags"),
			u64("HighResResponseTime"),
			ptr("Irp"),
			u32("IssuingThreadId"),
		),
	})
}

func registerStackWalkEvents() {
	register(StackWalkProviderID, 32, "Stack",
		map[uint8]decodeFunc{2: layout(
			u64("EventTimeStamp"),
			u32("StackProcess"),
			u32("StackThread"),
			ptrArrayRest("Stack"),
		)})
}

func registerPageFaultEvents() {
	fault := layout(
		ptr("VirtualAddress"),
		ptr("ProgramCounter"),
	)
	faultOps := map[uint8]string{
		10: "TransitionFault",
		11: "DemandZeroFault",
		12: "CopyOnWrite",
		13: "GuardPageFault",
		14: "HardPageFault",
		15: "AccessViolation",
	}
	for opcode, operation := range faultOps {
		register(PageFaultProviderID, opcode, operation,
			map[uint8]decodeFunc{2: fault})
	}

	register(PageFaultProviderID, 32, "HardFault",
		map[uint8]decodeFunc{2: layout(
			u64("InitialTime"),
			u64("ReadOffset"),
			ptr("VirtualAddress"),
			ptr("FileObject"),
			u32("TThreadId"),
			u32("ByteCount"),
		)})

	virtualMem := layout(
		ptr("BaseAddress"),
		ptr("RegionSize"),
		u32("ProcessId"),
		u32("Flags"),
	)
	register(PageFaultProviderID, 98, "VirtualAlloc",
		map[uint8]decodeFunc{2: virtualMem})
	register(PageFaultProviderID, 99, "VirtualFree",
		map[uint8]decodeFunc{2: virtualMem})
}
