package resolver

// jsBuiltins are Node.js built-in modules. Specifiers with a node: scheme
// are always stdlib; bare names are checked against this set (subpaths like
// fs/promises match on the head segment).
var jsBuiltins = map[string]bool{
	"assert": true, "async_hooks": true, "buffer": true, "child_process": true,
	"cluster": true, "console": true, "constants": true, "crypto": true,
	"dgram": true, "diagnostics_channel": true, "dns": true, "domain": true,
	"events": true, "fs": true, "http": true, "http2": true, "https": true,
	"inspector": true, "module": true, "net": true, "os": true, "path": true,
	"perf_hooks": true, "process": true, "punycode": true, "querystring": true,
	"readline": true, "repl": true, "stream": true, "string_decoder": true,
	"timers": true, "tls": true, "trace_events": true, "tty": true, "url": true,
	"util": true, "v8": true, "vm": true, "wasi": true, "worker_threads": true,
	"zlib": true,
}

// pyStdlib is the Python standard library module list (top-level names,
// CPython 3.12). Used to classify absolute imports that match no local root.
var pyStdlib = map[string]bool{
	"abc": true, "argparse": true, "array": true, "ast": true, "asyncio": true,
	"base64": true, "bisect": true, "builtins": true, "calendar": true,
	"cmath": true, "cmd": true, "code": true, "codecs": true, "collections": true,
	"colorsys": true, "compileall": true, "concurrent": true, "configparser": true,
	"contextlib": true, "contextvars": true, "copy": true, "copyreg": true,
	"csv": true, "ctypes": true, "dataclasses": true, "datetime": true,
	"decimal": true, "difflib": true, "dis": true, "doctest": true, "email": true,
	"encodings": true, "enum": true, "errno": true, "faulthandler": true,
	"filecmp": true, "fileinput": true, "fnmatch": true, "fractions": true,
	"ftplib": true, "functools": true, "gc": true, "getopt": true, "getpass": true,
	"gettext": true, "glob": true, "graphlib": true, "gzip": true, "hashlib": true,
	"heapq": true, "hmac": true, "html": true, "http": true, "imaplib": true,
	"importlib": true, "inspect": true, "io": true, "ipaddress": true,
	"itertools": true, "json": true, "keyword": true, "linecache": true,
	"locale": true, "logging": true, "lzma": true, "mailbox": true, "marshal": true,
	"math": true, "mimetypes": true, "multiprocessing": true, "netrc": true,
	"numbers": true, "operator": true, "os": true, "pathlib": true, "pdb": true,
	"pickle": true, "pkgutil": true, "platform": true, "plistlib": true,
	"poplib": true, "posixpath": true, "pprint": true, "profile": true,
	"pstats": true, "pty": true, "pwd": true, "py_compile": true, "pydoc": true,
	"queue": true, "quopri": true, "random": true, "re": true, "readline": true,
	"reprlib": true, "resource": true, "runpy": true, "sched": true,
	"secrets": true, "select": true, "selectors": true, "shelve": true,
	"shlex": true, "shutil": true, "signal": true, "site": true, "smtplib": true,
	"socket": true, "socketserver": true, "sqlite3": true, "ssl": true,
	"stat": true, "statistics": true, "string": true, "stringprep": true,
	"struct": true, "subprocess": true, "symtable": true, "sys": true,
	"sysconfig": true, "tarfile": true, "tempfile": true, "termios": true,
	"textwrap": true, "threading": true, "time": true, "timeit": true,
	"tkinter": true, "token": true, "tokenize": true, "tomllib": true,
	"trace": true, "traceback": true, "tracemalloc": true, "tty": true,
	"turtle": true, "types": true, "typing": true, "unicodedata": true,
	"unittest": true, "urllib": true, "uuid": true, "venv": true, "warnings": true,
	"wave": true, "weakref": true, "webbrowser": true, "wsgiref": true,
	"xml": true, "xmlrpc": true, "zipapp": true, "zipfile": true, "zipimport": true,
	"zlib": true, "zoneinfo": true,
}
