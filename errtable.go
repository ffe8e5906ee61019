// SPDX-License-Identifier: GPL-3.0-or-later

package tunnel

import "fmt"

// windowsErrorMnemonics reconstructs stunnel.c's my_strerror Winsock case
// statement (codes 10004-11004) as a data table rather than hard-coding
// it inline with control flow.
var windowsErrorMnemonics = map[int]string{
	10004: "Interrupted system call (WSAEINTR)",
	10009: "Bad file number (WSAEBADF)",
	10013: "Permission denied (WSAEACCES)",
	10014: "Bad address (WSAEFAULT)",
	10022: "Invalid argument (WSAEINVAL)",
	10024: "Too many open files (WSAEMFILE)",
	10035: "Operation would block (WSAEWOULDBLOCK)",
	10036: "Operation now in progress (WSAEINPROGRESS)",
	10037: "Operation already in progress (WSAEALREADY)",
	10038: "Socket operation on non-socket (WSAENOTSOCK)",
	10039: "Destination address required (WSAEDESTADDRREQ)",
	10040: "Message too long (WSAEMSGSIZE)",
	10041: "Protocol wrong type for socket (WSAEPROTOTYPE)",
	10042: "Bad protocol option (WSAENOPROTOOPT)",
	10043: "Protocol not supported (WSAEPROTONOSUPPORT)",
	10044: "Socket type not supported (WSAESOCKTNOSUPPORT)",
	10045: "Operation not supported on socket (WSAEOPNOTSUPP)",
	10046: "Protocol family not supported (WSAEPFNOSUPPORT)",
	10047: "Address family not supported by protocol family (WSAEAFNOSUPPORT)",
	10048: "Address already in use (WSAEADDRINUSE)",
	10049: "Can't assign requested address (WSAEADDRNOTAVAIL)",
	10050: "Network is down (WSAENETDOWN)",
	10051: "Network is unreachable (WSAENETUNREACH)",
	10052: "Net dropped connection or reset (WSAENETRESET)",
	10053: "Software caused connection abort (WSAECONNABORTED)",
	10054: "Connection reset by peer (WSAECONNRESET)",
	10055: "No buffer space available (WSAENOBUFS)",
	10056: "Socket is already connected (WSAEISCONN)",
	10057: "Socket is not connected (WSAENOTCONN)",
	10058: "Can't send after socket shutdown (WSAESHUTDOWN)",
	10059: "Too many references, can't splice (WSAETOOMANYREFS)",
	10060: "Connection timed out (WSAETIMEDOUT)",
	10061: "Connection refused (WSAECONNREFUSED)",
	10062: "Too many levels of symbolic links (WSAELOOP)",
	10063: "File name too long (WSAENAMETOOLONG)",
	10064: "Host is down (WSAEHOSTDOWN)",
	10065: "No route to host (WSAEHOSTUNREACH)",
	10066: "Directory not empty (WSAENOTEMPTY)",
	10067: "Too many processes (WSAEPROCLIM)",
	10068: "Too many users (WSAEUSERS)",
	10069: "Disc quota exceeded (WSAEDQUOT)",
	10070: "Stale NFS file handle (WSAESTALE)",
	10071: "Too many levels of remote in path (WSAEREMOTE)",
	10091: "Network subsystem is unusable (WSASYSNOTREADY)",
	10092: "WinSock DLL cannot support this application (WSAVERNOTSUPPORTED)",
	10093: "WinSock not initialized (WSANOTINITIALISED)",
	10101: "Graceful shutdown in progress (WSAEDISCON)",
	11001: "Host not found (WSAHOST_NOT_FOUND)",
	11002: "Non-authoritative, try again (WSATRY_AGAIN)",
	11003: "Non-recoverable errors (WSANO_RECOVERY)",
	11004: "Valid name, no data record found (WSANO_DATA)",
}

// translateErrorCode formats "<context>: <message> (<code>)", where
// <message> comes from [windowsErrorMnemonics] for codes in its range,
// and from the platform's own generic translation otherwise.
func translateErrorCode(context string, code int) string {
	if msg, ok := windowsErrorMnemonics[code]; ok {
		return fmt.Sprintf("%s: %s (%d)", context, msg, code)
	}
	return fmt.Sprintf("%s: %s (%d)", context, genericStrerror(code), code)
}
